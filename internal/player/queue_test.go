package player

import (
	"math/rand/v2"
	"testing"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func songs(n int) []models.Song {
	out := make([]models.Song, n)
	for i := range out {
		out[i] = models.Song{ID: int64(i + 1), Title: string(rune('A' + i)), AudioURL: "http://audio/" + string(rune('a'+i))}
	}
	return out
}

func TestQueueNavigation(t *testing.T) {
	q := NewQueue(nil)
	assert.Equal(t, -1, q.Index())

	_, err := q.Next()
	assert.ErrorIs(t, err, shared.ErrEmptyQueue)

	q.Load(songs(3), 1)
	assert.Equal(t, 1, q.Index())

	s, err := q.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.ID)

	_, err = q.Next()
	assert.ErrorIs(t, err, shared.ErrEmptyQueue)
	assert.Equal(t, 2, q.Index(), "end of queue keeps the current song")

	s, _ = q.Prev()
	assert.Equal(t, int64(2), s.ID)
	s, _ = q.Prev()
	s, _ = q.Prev()
	assert.Equal(t, int64(1), s.ID, "prev on first song restarts it")

	_, err = q.Jump(5)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	s, err = q.Jump(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.ID)
}

func TestQueueLoadOutOfRangeStart(t *testing.T) {
	q := NewQueue(nil)
	q.Load(songs(2), 9)
	assert.Equal(t, 0, q.Index())

	q.Load(nil, 0)
	assert.Equal(t, -1, q.Index())
}

func TestQueueRepeat(t *testing.T) {
	q := NewQueue(nil)
	q.Load(songs(2), 1)

	assert.Equal(t, RepeatAll, q.CycleRepeat())
	s, err := q.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)
	s, _ = q.Prev()
	assert.Equal(t, int64(2), s.ID)

	assert.Equal(t, RepeatOne, q.CycleRepeat())
	s, err = q.Advance()
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ID, "advance repeats the song")
	_, err = q.Next()
	assert.ErrorIs(t, err, shared.ErrEmptyQueue, "an explicit skip ignores repeat one")
	s, _ = q.Prev()
	assert.Equal(t, int64(1), s.ID)

	assert.Equal(t, RepeatOff, q.CycleRepeat())
	assert.Equal(t, "off", q.Repeat().String())
}

func TestQueueShuffledLoadRandomStart(t *testing.T) {
	q := NewQueue(rand.New(rand.NewPCG(3, 4)))
	q.SetShuffle(true)

	firsts := map[int]bool{}
	for range 20 {
		q.Load(songs(5), -1)
		require.Len(t, q.order, 5)
		firsts[q.Index()] = true

		seen := map[int]bool{q.Index(): true}
		for {
			if _, err := q.Next(); err != nil {
				break
			}
			seen[q.Index()] = true
		}
		assert.Len(t, seen, 5)
	}
	assert.Greater(t, len(firsts), 1, "the first song varies")

	q.SetShuffle(false)
	q.Load(songs(5), -1)
	assert.Equal(t, 0, q.Index())
}

func TestQueueShuffleKeepsCurrent(t *testing.T) {
	q := NewQueue(rand.New(rand.NewPCG(1, 2)))
	q.Load(songs(10), 4)

	q.SetShuffle(true)
	assert.Equal(t, 4, q.Index())

	seen := map[int]bool{q.Index(): true}
	for {
		if _, err := q.Next(); err != nil {
			break
		}
		seen[q.Index()] = true
	}
	assert.Len(t, seen, 10, "shuffled order visits every song once")

	q.SetShuffle(false)
	cur := q.Index()
	assert.Equal(t, cur, q.Index())
	if cur < 9 {
		s, err := q.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(cur+2), s.ID)
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue(nil)
	q.Load(songs(3), 1)

	require.NoError(t, q.Remove(0))
	s, _ := q.Current()
	assert.Equal(t, int64(2), s.ID)
	assert.Equal(t, 0, q.Index())

	require.NoError(t, q.Remove(0))
	s, _ = q.Current()
	assert.Equal(t, int64(3), s.ID, "removing the current song moves to the next")

	require.NoError(t, q.Remove(0))
	assert.Equal(t, -1, q.Index())
	assert.ErrorIs(t, q.Remove(0), shared.ErrInvalidArgument)
}

func TestQueueEnqueue(t *testing.T) {
	q := NewQueue(nil)
	q.Enqueue(songs(2)...)
	assert.Equal(t, 0, q.Index())
	assert.Equal(t, 2, q.Len())

	q.Clear()
	assert.Equal(t, -1, q.Index())
	assert.Zero(t, q.Len())
}

// Any sequence of operations keeps the index within [-1, len).
func TestQueueIndexInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	q := NewQueue(rng)

	for step := range 5000 {
		switch rng.IntN(9) {
		case 0:
			q.Load(songs(rng.IntN(6)), rng.IntN(8)-1)
		case 1:
			q.Enqueue(songs(rng.IntN(3))...)
		case 2:
			q.Next()
		case 3:
			q.Prev()
		case 4:
			q.Jump(rng.IntN(8) - 1)
		case 5:
			q.Remove(rng.IntN(8) - 1)
		case 6:
			q.SetShuffle(rng.IntN(2) == 0)
		case 7:
			q.CycleRepeat()
		case 8:
			if rng.IntN(10) == 0 {
				q.Clear()
			}
		}

		idx := q.Index()
		if q.Len() == 0 {
			require.Equal(t, -1, idx, "step %d", step)
		} else {
			require.GreaterOrEqual(t, idx, 0, "step %d", step)
			require.Less(t, idx, q.Len(), "step %d", step)
		}
		require.Len(t, q.order, q.Len(), "step %d", step)
	}
}
