package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/config"
	"storefront/internal/client/session"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *session.Store, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "auth.json")
	store := session.NewStore(path, zerolog.Nop())

	cfg := &config.Config{ServerURL: srv.URL, Timeout: 5 * time.Second}
	client, err := New(cfg, store, zerolog.Nop())
	require.NoError(t, err)

	return client, store, path
}

func TestTransportAttachesToken(t *testing.T) {
	var gotAuth string
	client, store, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))

	require.NoError(t, store.Set(session.Session{User: &session.Profile{Name: "A"}, Token: "tok-123"}))
	require.NoError(t, client.CheckAuth(context.Background()))
	require.Equal(t, "tok-123", gotAuth)

	// A logout must be observed by the very next request.
	require.NoError(t, store.Clear())
	require.NoError(t, client.CheckAuth(context.Background()))
	require.Equal(t, "", gotAuth)
}

func TestTransportKeepsCallerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "auth.json"), zerolog.Nop())
	require.NoError(t, store.Set(session.Session{Token: "stored"}))

	httpClient := &http.Client{Transport: &sessionTransport{tokens: store, base: http.DefaultTransport}}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "explicit")

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "explicit", gotAuth)
	// The transport clones before adding headers; the original is untouched.
	require.Equal(t, "explicit", req.Header.Get("Authorization"))
}

func TestLoginSignsIn(t *testing.T) {
	client, store, path := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ada@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "standard"}, "token": "issued-token"}`))
	}))

	sess, err := client.Login(context.Background(), "ada@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "issued-token", sess.Token)
	require.Equal(t, "Ada", sess.User.Name)

	// Write-through: the session survives on disk for the next process.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted session.Session
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Equal(t, "issued-token", persisted.Token)
	require.Equal(t, "standard", persisted.User.Role)

	require.Equal(t, "issued-token", store.Token())
}

func TestRestoredSessionReachesHeader(t *testing.T) {
	var gotAuth string
	client, store, path := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok": true}`))
	}))

	persisted := session.Session{User: &session.Profile{Name: "Stored User"}, Token: "abc"}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	store.Restore()
	require.Equal(t, "Stored User", store.Current().User.Name)

	require.NoError(t, client.CheckAuth(context.Background()))
	require.Equal(t, "abc", gotAuth)
}

func TestExpiredCredentialPurgesSession(t *testing.T) {
	client, store, path := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "message": "authentication required"}`))
	}))

	require.NoError(t, store.Set(session.Session{User: &session.Profile{Name: "Old"}, Token: "expired"}))

	err := client.CheckAuth(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)

	require.Equal(t, session.Session{}, store.Current())
	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRoleDenialKeepsSession(t *testing.T) {
	client, store, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "message": "UnAuthorized Access"}`))
	}))

	require.NoError(t, store.Set(session.Session{User: &session.Profile{Role: "standard"}, Token: "valid"}))

	err := client.CheckAdmin(context.Background())
	require.ErrorIs(t, err, ErrAccessDenied)

	// The credential still works; only the role was insufficient.
	require.Equal(t, "valid", store.Token())
}

func TestServerErrorSurfaced(t *testing.T) {
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid email or password"}`))
	}))

	_, err := client.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "invalid email or password", apiErr.Message)
}
