package player

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// RepeatMode controls what happens at the ends of the queue.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Queue is the ordered list of songs being played.
//
// order is the play order as indices into songs and pos the position within it.
// Without shuffle order is the identity. Index is -1 exactly when the queue is empty.
type Queue struct {
	songs   []models.Song
	order   []int
	pos     int
	shuffle bool
	repeat  RepeatMode
	rng     *rand.Rand
}

// NewQueue returns an empty queue. A nil rng uses the global source.
func NewQueue(rng *rand.Rand) *Queue {
	return &Queue{pos: -1, rng: rng}
}

func (q *Queue) Len() int { return len(q.songs) }

func (q *Queue) Shuffle() bool { return q.shuffle }

func (q *Queue) Repeat() RepeatMode { return q.repeat }

// Songs returns a copy of the queued songs in insertion order.
func (q *Queue) Songs() []models.Song {
	return slices.Clone(q.songs)
}

// Index returns the position of the current song in [Queue.Songs], or -1.
func (q *Queue) Index() int {
	if q.pos < 0 || q.pos >= len(q.order) {
		return -1
	}
	return q.order[q.pos]
}

// Current returns the current song.
func (q *Queue) Current() (models.Song, bool) {
	i := q.Index()
	if i < 0 {
		return models.Song{}, false
	}
	return q.songs[i], true
}

// Load replaces the queue with songs and makes songs[start] current.
// A negative start picks a random first song when shuffling. Any other out of range start falls back to the first
// song.
func (q *Queue) Load(songs []models.Song, start int) {
	q.songs = slices.Clone(songs)
	if len(q.songs) == 0 {
		q.order, q.pos = nil, -1
		return
	}
	if start >= len(q.songs) || (start < 0 && !q.shuffle) {
		start = 0
	}
	q.rebuild(start)
}

// Enqueue appends songs. An empty queue starts at the first appended song.
func (q *Queue) Enqueue(songs ...models.Song) {
	if len(songs) == 0 {
		return
	}
	first := len(q.songs)
	q.songs = append(q.songs, songs...)

	added := make([]int, len(songs))
	for i := range added {
		added[i] = first + i
	}
	if q.shuffle {
		q.perm(added)
	}
	q.order = append(q.order, added...)
	if q.pos < 0 {
		q.pos = 0
	}
}

// Advance moves on after the current song finished. RepeatOne keeps the current song, otherwise it behaves like
// [Queue.Next].
func (q *Queue) Advance() (models.Song, error) {
	if q.repeat == RepeatOne {
		song, ok := q.Current()
		if !ok {
			return models.Song{}, shared.ErrEmptyQueue
		}
		return song, nil
	}
	return q.Next()
}

// Next skips to the following song and returns it.
//
// At the end of the queue it wraps around with RepeatAll and fails with [shared.ErrEmptyQueue] otherwise, leaving the
// current song unchanged.
func (q *Queue) Next() (models.Song, error) {
	if len(q.songs) == 0 {
		return models.Song{}, shared.ErrEmptyQueue
	}

	switch {
	case q.pos+1 < len(q.order):
		q.pos++
	case q.repeat == RepeatAll:
		q.pos = 0
	default:
		return models.Song{}, fmt.Errorf("%w: end of queue", shared.ErrEmptyQueue)
	}

	song, _ := q.Current()
	return song, nil
}

// Prev moves to the previous song. On the first song it wraps with RepeatAll and restarts that song otherwise.
func (q *Queue) Prev() (models.Song, error) {
	if len(q.songs) == 0 {
		return models.Song{}, shared.ErrEmptyQueue
	}

	switch {
	case q.pos > 0:
		q.pos--
	case q.repeat == RepeatAll:
		q.pos = len(q.order) - 1
	}

	song, _ := q.Current()
	return song, nil
}

// Jump makes songs[i] current.
func (q *Queue) Jump(i int) (models.Song, error) {
	if i < 0 || i >= len(q.songs) {
		return models.Song{}, fmt.Errorf("%w: queue index %d out of range [0, %d)", shared.ErrInvalidArgument, i, len(q.songs))
	}
	q.pos = slices.Index(q.order, i)
	return q.songs[i], nil
}

// Remove deletes songs[i]. Removing the current song makes the one after it current.
func (q *Queue) Remove(i int) error {
	if i < 0 || i >= len(q.songs) {
		return fmt.Errorf("%w: queue index %d out of range [0, %d)", shared.ErrInvalidArgument, i, len(q.songs))
	}

	at := slices.Index(q.order, i)
	q.songs = slices.Delete(q.songs, i, i+1)
	q.order = slices.Delete(q.order, at, at+1)
	for k, idx := range q.order {
		if idx > i {
			q.order[k] = idx - 1
		}
	}

	switch {
	case len(q.songs) == 0:
		q.pos = -1
	case at < q.pos:
		q.pos--
	case q.pos >= len(q.order):
		q.pos = len(q.order) - 1
	}
	return nil
}

// Clear empties the queue. Shuffle and repeat settings are kept.
func (q *Queue) Clear() {
	q.songs, q.order, q.pos = nil, nil, -1
}

// SetShuffle turns shuffle on or off. The current song stays current.
func (q *Queue) SetShuffle(on bool) {
	q.shuffle = on
	if len(q.songs) == 0 {
		return
	}
	q.rebuild(q.Index())
}

// CycleRepeat moves to the next repeat mode (off, all, one) and returns it.
func (q *Queue) CycleRepeat() RepeatMode {
	q.repeat = (q.repeat + 1) % 3
	return q.repeat
}

// rebuild recomputes the play order so that songs[current] is at the current position. A negative current
// shuffles every song.
func (q *Queue) rebuild(current int) {
	q.order = make([]int, len(q.songs))
	for i := range q.order {
		q.order[i] = i
	}
	if !q.shuffle {
		q.pos = current
		return
	}
	if current < 0 {
		q.perm(q.order)
		q.pos = 0
		return
	}

	rest := slices.Delete(slices.Clone(q.order), current, current+1)
	q.perm(rest)
	q.order = append([]int{current}, rest...)
	q.pos = 0
}

func (q *Queue) perm(s []int) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if q.rng != nil {
		q.rng.Shuffle(len(s), swap)
		return
	}
	rand.Shuffle(len(s), swap)
}
