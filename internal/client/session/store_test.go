package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.json")
	return NewStore(path, zerolog.Nop()), path
}

func writeSession(t *testing.T, path string, sess Session) {
	t.Helper()
	data, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestRestore(t *testing.T) {
	t.Run("loads persisted session", func(t *testing.T) {
		store, path := testStore(t)
		writeSession(t, path, Session{
			User:  &Profile{Name: "Stored User", Email: "stored@example.com", Role: "standard"},
			Token: "abc",
		})

		store.Restore()

		got := store.Current()
		require.NotNil(t, got.User)
		require.Equal(t, "Stored User", got.User.Name)
		require.Equal(t, "abc", got.Token)
		require.True(t, got.LoggedIn())
	})

	t.Run("missing file keeps default and never writes", func(t *testing.T) {
		store, path := testStore(t)

		store.Restore()

		require.Equal(t, Session{}, store.Current())
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt file purged and default kept", func(t *testing.T) {
		store, path := testStore(t)
		require.NoError(t, os.WriteFile(path, []byte("not-json{{"), 0o600))

		store.Restore()

		require.Equal(t, Session{}, store.Current())
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("runs at most once", func(t *testing.T) {
		store, path := testStore(t)
		writeSession(t, path, Session{User: &Profile{Name: "First"}, Token: "one"})

		store.Restore()
		require.Equal(t, "one", store.Token())

		// A later Restore must not pick up changes on disk.
		writeSession(t, path, Session{User: &Profile{Name: "Second"}, Token: "two"})
		store.Restore()
		require.Equal(t, "one", store.Token())
		require.Equal(t, "First", store.Current().User.Name)
	})

	t.Run("safe under concurrent callers", func(t *testing.T) {
		store, path := testStore(t)
		writeSession(t, path, Session{Token: "shared"})

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				store.Restore()
				_ = store.Current()
				_ = store.Token()
			}()
		}
		wg.Wait()

		require.Equal(t, "shared", store.Token())
	})
}

func TestSetWritesThrough(t *testing.T) {
	store, path := testStore(t)

	logged := Session{User: &Profile{Name: "Ada", Role: "administrator"}, Token: "tok-1"}
	require.NoError(t, store.Set(logged))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted Session
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Equal(t, "tok-1", persisted.Token)
	require.Equal(t, "Ada", persisted.User.Name)

	require.NoError(t, store.Clear())
	require.Equal(t, Session{}, store.Current())
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSubscribe(t *testing.T) {
	store, _ := testStore(t)

	var mu sync.Mutex
	var seen []string
	cancel := store.Subscribe(func(sess Session) {
		mu.Lock()
		seen = append(seen, sess.Token)
		mu.Unlock()
	})

	require.NoError(t, store.Set(Session{Token: "first"}))
	require.NoError(t, store.Set(Session{Token: "second"}))
	cancel()
	require.NoError(t, store.Set(Session{Token: "after-cancel"}))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, seen)
}

func TestCurrentReturnsCopy(t *testing.T) {
	store, _ := testStore(t)
	require.NoError(t, store.Set(Session{User: &Profile{Name: "Original"}, Token: "tok"}))

	snapshot := store.Current()
	snapshot.User.Name = "Mutated"

	require.Equal(t, "Original", store.Current().User.Name)
}
