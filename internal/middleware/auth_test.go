package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserGetter struct {
	user  models.User
	err   error
	calls int
}

func (f *fakeUserGetter) GetByID(ctx context.Context, id string) (models.User, error) {
	f.calls++
	if f.err != nil {
		return models.User{}, f.err
	}
	u := f.user
	u.ID = id
	return u, nil
}

func newCodec(t *testing.T) *security.TokenCodec {
	t.Helper()
	codec, err := security.NewTokenCodec("middleware-test-secret", time.Hour)
	require.NoError(t, err)
	return codec
}

func protectedRouter(codec *security.TokenCodec, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(codec, zerolog.Nop())}, extra...)
	chain = append(chain, func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"subject": identity.Subject})
	})
	r.GET("/protected", chain...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	codec := newCodec(t)

	t.Run("raw token admitted", func(t *testing.T) {
		token, err := codec.Issue("user-1")
		require.NoError(t, err)

		w := doGet(protectedRouter(codec), token)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "user-1", decodeBody(t, w)["subject"])
	})

	t.Run("bearer prefix admitted", func(t *testing.T) {
		token, err := codec.Issue("user-2")
		require.NoError(t, err)

		w := doGet(protectedRouter(codec), "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "user-2", decodeBody(t, w)["subject"])
	})

	t.Run("missing header rejected", func(t *testing.T) {
		w := doGet(protectedRouter(codec), "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		body := decodeBody(t, w)
		require.Equal(t, false, body["success"])
		require.Equal(t, "authentication required", body["message"])
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := doGet(protectedRouter(codec), "not-a-token")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, false, decodeBody(t, w)["success"])
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other, err := security.NewTokenCodec("some-other-secret", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("user-3")
		require.NoError(t, err)

		w := doGet(protectedRouter(codec), token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token rejected with explicit 401", func(t *testing.T) {
		short, err := security.NewTokenCodec("middleware-test-secret", time.Millisecond)
		require.NoError(t, err)
		token, err := short.Issue("user-4")
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		w := doGet(protectedRouter(codec), token)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		body := decodeBody(t, w)
		require.Equal(t, false, body["success"])
		require.Equal(t, "authentication required", body["message"])
	})
}

func TestRequireAdmin(t *testing.T) {
	codec := newCodec(t)

	issue := func(t *testing.T, subject string) string {
		t.Helper()
		token, err := codec.Issue(subject)
		require.NoError(t, err)
		return token
	}

	t.Run("administrator admitted", func(t *testing.T) {
		users := &fakeUserGetter{user: models.User{Role: models.RoleAdministrator}}
		r := protectedRouter(codec, RequireAdmin(users, zerolog.Nop()))

		w := doGet(r, issue(t, "admin-1"))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, users.calls)
	})

	t.Run("standard role denied", func(t *testing.T) {
		users := &fakeUserGetter{user: models.User{Role: models.RoleStandard}}
		r := protectedRouter(codec, RequireAdmin(users, zerolog.Nop()))

		w := doGet(r, issue(t, "user-1"))
		require.Equal(t, http.StatusUnauthorized, w.Code)

		body := decodeBody(t, w)
		require.Equal(t, false, body["success"])
		require.Equal(t, "UnAuthorized Access", body["message"])
		require.NotContains(t, body, "error")
	})

	t.Run("lookup failure reported distinctly", func(t *testing.T) {
		users := &fakeUserGetter{err: errors.New("connection refused")}
		r := protectedRouter(codec, RequireAdmin(users, zerolog.Nop()))

		w := doGet(r, issue(t, "user-1"))
		require.Equal(t, http.StatusUnauthorized, w.Code)

		body := decodeBody(t, w)
		require.Equal(t, false, body["success"])
		require.Equal(t, "connection refused", body["error"])
		require.Equal(t, "Error in admin middleware", body["message"])
	})

	t.Run("missing identity treated as middleware error", func(t *testing.T) {
		users := &fakeUserGetter{user: models.User{Role: models.RoleAdministrator}}
		r := gin.New()
		r.GET("/protected", RequireAdmin(users, zerolog.Nop()), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := doGet(r, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Error in admin middleware", decodeBody(t, w)["message"])
		require.Equal(t, 0, users.calls)
	})

	t.Run("role re-read on every request", func(t *testing.T) {
		users := &fakeUserGetter{user: models.User{Role: models.RoleAdministrator}}
		r := protectedRouter(codec, RequireAdmin(users, zerolog.Nop()))
		token := issue(t, "admin-2")

		w := doGet(r, token)
		require.Equal(t, http.StatusOK, w.Code)

		users.user.Role = models.RoleStandard

		w = doGet(r, token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "UnAuthorized Access", decodeBody(t, w)["message"])
		require.Equal(t, 2, users.calls)
	})
}
