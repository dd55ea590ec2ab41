//go:build unix

package player

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/musicx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecBackend(t *testing.T) {
	t.Run("runs command with url", func(t *testing.T) {
		b := NewExecBackend("sh", []string{"-c", `test "$0" = "http://audio/song.mp3"`}, nil)
		done, err := b.Play(context.Background(), "http://audio/song.mp3")
		require.NoError(t, err)

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("player did not exit")
		}
	})

	t.Run("stop kills running player", func(t *testing.T) {
		b := NewExecBackend("sleep", nil, nil)
		done, err := b.Play(context.Background(), "30")
		require.NoError(t, err)

		require.NoError(t, b.Pause())
		require.NoError(t, b.Resume())
		require.NoError(t, b.Stop())

		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("player was not killed")
		}
		assert.NoError(t, b.Stop(), "stopping twice is a no-op")
	})

	t.Run("missing command", func(t *testing.T) {
		b := NewExecBackend("musicx-no-such-player", nil, nil)
		_, err := b.Play(context.Background(), "http://audio/x")
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("empty url", func(t *testing.T) {
		b := NewExecBackend("sh", nil, nil)
		_, err := b.Play(context.Background(), "")
		assert.ErrorIs(t, err, shared.ErrNoAudio)
	})
}
