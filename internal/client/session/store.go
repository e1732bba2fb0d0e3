// Package session holds the client's signed-in state: a display copy of the
// user plus the bearer token, mirrored to a single file on disk. The Store is
// the only writer of that file; login, logout, and expiry all go through Set.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Profile is the login-time copy of the user kept for display. It is not an
// authorization source; protected views always re-check with the server.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Session is the whole client-side auth state. A zero Session means logged
// out. It is always replaced wholesale, never patched field by field.
type Session struct {
	User  *Profile `json:"user"`
	Token string   `json:"token"`
}

func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Store is a process-wide cell for the current Session. Reads are cheap
// snapshots; Set replaces the value, persists it, then notifies subscribers.
type Store struct {
	path string
	log  zerolog.Logger

	restoreOnce sync.Once

	mu       sync.RWMutex
	current  Session
	watchers map[int]func(Session)
	nextID   int
}

func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path:     path,
		log:      log,
		watchers: make(map[int]func(Session)),
	}
}

// Restore loads the persisted session. It runs at most once per Store no
// matter how often it is called; later calls are no-ops. A missing file
// leaves the logged-out default and never writes. An unreadable file is
// removed so it cannot fail again on every startup.
func (s *Store) Restore() {
	s.restoreOnce.Do(s.restore)
}

func (s *Store) restore() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("session file unreadable")
		}
		return
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("session file corrupt, removing")
		if err := os.Remove(s.path); err != nil {
			s.log.Error().Err(err).Str("path", s.path).Msg("remove corrupt session file failed")
		}
		return
	}

	s.swap(sess)
}

// Current returns a snapshot. The profile is copied so callers cannot mutate
// the cell behind the store's back.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloned(s.current)
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Set replaces the session and writes it through to disk: logged-in sessions
// are saved, the logged-out zero value deletes the file. The in-memory value
// changes even when the disk write fails; the error reports the write.
func (s *Store) Set(sess Session) error {
	s.swap(sess)
	return s.persist(sess)
}

// Clear logs out.
func (s *Store) Clear() error {
	return s.Set(Session{})
}

// Subscribe registers a callback invoked after every change, including
// Restore. The returned cancel func removes it. Callbacks run without the
// store lock held and may call back into the Store.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) swap(sess Session) {
	s.mu.Lock()
	s.current = sess
	watchers := make([]func(Session), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(cloned(sess))
	}
}

func (s *Store) persist(sess Session) error {
	if !sess.LoggedIn() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func cloned(sess Session) Session {
	if sess.User != nil {
		user := *sess.User
		sess.User = &user
	}
	return sess
}
