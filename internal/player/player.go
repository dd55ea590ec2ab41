package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// HistoryRecorder stores played songs; storage.Store implements it.
type HistoryRecorder interface {
	AddToHistory(userKey string, song models.Song) error
}

// Player couples a [Queue] with a [Backend] and records every started song.
type Player struct {
	mu      sync.Mutex
	queue   *Queue
	backend Backend
	history HistoryRecorder
	logger  *log.Logger

	userKey string
	playing bool
	paused  bool
	done    <-chan error
}

// Option configures a [Player].
type Option func(*Player)

// WithHistory records started songs under userKey.
func WithHistory(h HistoryRecorder, userKey string) Option {
	return func(p *Player) {
		p.history = h
		p.userKey = userKey
	}
}

// WithQueue replaces the default queue.
func WithQueue(q *Queue) Option {
	return func(p *Player) { p.queue = q }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// New creates a player on backend.
func New(backend Backend, opts ...Option) *Player {
	p := &Player{backend: backend, queue: NewQueue(nil), userKey: models.GuestKey}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = shared.NewLogger(nil)
	}
	return p
}

// Queue exposes the underlying queue. Callers must not use it concurrently with the player.
func (p *Player) Queue() *Queue { return p.queue }

// SetUser changes the history key, e.g. after login or logout.
func (p *Player) SetUser(userKey string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if userKey == "" {
		userKey = models.GuestKey
	}
	p.userKey = userKey
}

// Current returns the current song and whether it is playing.
func (p *Player) Current() (models.Song, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	song, ok := p.queue.Current()
	return song, ok && p.playing
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Done returns the completion channel of the song being played, or nil.
func (p *Player) Done() <-chan error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Play loads songs into the queue and starts songs[start].
func (p *Player) Play(ctx context.Context, songs []models.Song, start int) (models.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Load(songs, start)
	song, ok := p.queue.Current()
	if !ok {
		return models.Song{}, shared.ErrEmptyQueue
	}
	return song, p.start(ctx, song)
}

// Next starts the following song.
func (p *Player) Next(ctx context.Context) (models.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	song, err := p.queue.Next()
	if err != nil {
		return song, err
	}
	return song, p.start(ctx, song)
}

// Advance starts the song after the one that just finished, repeating it with RepeatOne.
func (p *Player) Advance(ctx context.Context) (models.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	song, err := p.queue.Advance()
	if err != nil {
		return song, err
	}
	return song, p.start(ctx, song)
}

// Prev starts the previous song.
func (p *Player) Prev(ctx context.Context) (models.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	song, err := p.queue.Prev()
	if err != nil {
		return song, err
	}
	return song, p.start(ctx, song)
}

// Jump starts the song at index i of the queue.
func (p *Player) Jump(ctx context.Context, i int) (models.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	song, err := p.queue.Jump(i)
	if err != nil {
		return song, err
	}
	return song, p.start(ctx, song)
}

// Songs returns the queued songs in insertion order.
func (p *Player) Songs() []models.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Songs()
}

// Enqueue appends songs to the queue without interrupting playback.
func (p *Player) Enqueue(songs ...models.Song) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Enqueue(songs...)
}

// Remove deletes the song at index i of the queue. Removing the playing song stops it.
func (p *Player) Remove(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := p.queue.Index()
	if err := p.queue.Remove(i); err != nil {
		return err
	}
	if i == current && p.playing {
		return p.halt()
	}
	return nil
}

// Clear stops playback and empties the queue.
func (p *Player) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Clear()
	return p.halt()
}

// TogglePause pauses or resumes playback and reports the new paused state.
func (p *Player) TogglePause() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false, nil
	}

	if p.paused {
		if err := p.backend.Resume(); err != nil {
			return true, err
		}
	} else if err := p.backend.Pause(); err != nil {
		return false, err
	}
	p.paused = !p.paused
	return p.paused, nil
}

// ToggleShuffle flips shuffle on the queue and reports the new state.
func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.SetShuffle(!p.queue.Shuffle())
	return p.queue.Shuffle()
}

// CycleRepeat advances the queue's repeat mode.
func (p *Player) CycleRepeat() RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.CycleRepeat()
}

// Modes returns the queue's shuffle flag and repeat mode.
func (p *Player) Modes() (bool, RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Shuffle(), p.queue.Repeat()
}

// Position returns the queue index of the current song and the queue length.
func (p *Player) Position() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Index(), p.queue.Len()
}

// Stop halts playback. The queue is kept.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halt()
}

func (p *Player) halt() error {
	p.playing, p.paused, p.done = false, false, nil
	return p.backend.Stop()
}

// start plays song, which the queue already made current. A song without audio stops the previous one.
func (p *Player) start(ctx context.Context, song models.Song) error {
	if !song.Playable() {
		if err := p.halt(); err != nil {
			p.logger.Warn("could not stop playback", "error", err)
		}
		return fmt.Errorf("%w: %s", shared.ErrNoAudio, song.Label())
	}

	done, err := p.backend.Play(ctx, song.AudioURL)
	if err != nil {
		p.playing, p.done = false, nil
		return err
	}
	p.playing, p.paused, p.done = true, false, done
	p.logger.Info("playing", "song", song.Label(), "id", song.ID)

	if p.history != nil {
		if err := p.history.AddToHistory(p.userKey, song); err != nil {
			p.logger.Warn("could not record history", "song", song.ID, "error", err)
		}
	}
	return nil
}
