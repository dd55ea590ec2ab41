package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	historyBucket = []byte("history")
	currentKey    = []byte("current")
)

// Store is the bbolt backed local storage.
type Store struct {
	db    *bbolt.DB
	limit int
	now   func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithHistoryLimit caps the history length. Values outside [1, shared.MaxHistory] fall back to the maximum.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n >= 1 && n <= shared.MaxHistory {
			s.limit = n
		}
	}
}

// WithClock replaces time.Now, used for expiry checks and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the storage file at path.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create storage directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{sessionBucket, historyBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create buckets: %w", err)
	}

	s := &Store{db: db, limit: shared.MaxHistory, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Limit returns the history cap in effect.
func (s *Store) Limit() int { return s.limit }

// SaveSession persists session as the current one.
func (s *Store) SaveSession(session *models.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: session token is required", shared.ErrInvalidInput)
	}
	if session.SavedAt.IsZero() {
		session.SavedAt = s.now()
	}

	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error serializing session: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(currentKey, value)
	})
}

// Session returns the stored session.
//
// A missing session returns [shared.ErrNotAuthenticated]; an expired one additionally wraps [shared.ErrTokenExpired].
func (s *Store) Session() (*models.Session, error) {
	var session models.Session
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get(currentKey)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &session)
	})
	if err != nil {
		return nil, fmt.Errorf("error reading session: %w", err)
	}

	if !found || session.Token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if !session.Valid(s.now()) {
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrTokenExpired)
	}
	return &session, nil
}

// ClearSession removes the stored session. Clearing an absent session is not an error.
func (s *Store) ClearSession() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(currentKey)
	})
}

// historyKey orders entries by play time; the song id suffix keeps keys unique.
func historyKey(t time.Time, songID int64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(t.UnixNano()))
	binary.BigEndian.PutUint64(key[8:], uint64(songID))
	return key
}

func sameSong(a, b models.Song) bool {
	if a.ID != 0 || b.ID != 0 {
		return a.ID == b.ID
	}
	return shared.NormalizeSongKey(a.Title, a.Artist) == shared.NormalizeSongKey(b.Title, b.Artist)
}

// AddToHistory records song as the most recent play for userKey.
//
// An older entry for the same song is removed first and the oldest entries beyond the cap are dropped.
func (s *Store) AddToHistory(userKey string, song models.Song) error {
	if userKey == "" {
		userKey = models.GuestKey
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(historyBucket).CreateBucketIfNotExists([]byte(userKey))
		if err != nil {
			return err
		}

		var kept, stale [][]byte
		err = b.ForEach(func(k, v []byte) error {
			var entry models.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("error deserializing history entry: %w", err)
			}
			key := append([]byte(nil), k...)
			if sameSong(entry.Song, song) {
				stale = append(stale, key)
			} else {
				kept = append(kept, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		playedAt := s.now()
		if n := len(kept); n > 0 {
			prev := time.Unix(0, int64(binary.BigEndian.Uint64(kept[n-1][:8])))
			if !playedAt.After(prev) {
				playedAt = prev.Add(time.Nanosecond)
			}
		}

		value, err := json.Marshal(models.HistoryEntry{Song: song, PlayedAt: playedAt})
		if err != nil {
			return fmt.Errorf("error serializing history entry: %w", err)
		}
		if err := b.Put(historyKey(playedAt, song.ID), value); err != nil {
			return err
		}

		// kept is oldest first
		for i := 0; len(kept)-i+1 > s.limit; i++ {
			if err := b.Delete(kept[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns userKey's plays, most recent first.
func (s *Store) History(userKey string) ([]models.HistoryEntry, error) {
	if userKey == "" {
		userKey = models.GuestKey
	}

	entries := []models.HistoryEntry{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket).Bucket([]byte(userKey))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < s.limit; k, v = c.Prev() {
			var entry models.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("error deserializing history entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearHistory removes every entry for userKey.
func (s *Store) ClearHistory(userKey string) error {
	if userKey == "" {
		userKey = models.GuestKey
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(historyBucket).DeleteBucket([]byte(userKey))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}
