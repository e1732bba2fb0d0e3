package api

import (
	"context"
	"net/http"

	"storefront/internal/client/session"
)

type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecoveryAnswer string `json:"recoveryAnswer"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
}

type authEnvelope struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and signs the session in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (session.Session, error) {
	var out authEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("api/v1/auth/register"), in, &out); err != nil {
		return session.Session{}, err
	}
	return c.signIn(out), nil
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and signs the session in.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var out authEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("api/v1/auth/login"), loginPayload{Email: email, Password: password}, &out); err != nil {
		return session.Session{}, err
	}
	return c.signIn(out), nil
}

// Logout drops the session locally. Bearer tokens have no server-side
// revocation, so there is nothing to call.
func (c *Client) Logout() error {
	return c.store.Clear()
}

type forgotPasswordPayload struct {
	Email          string `json:"email"`
	RecoveryAnswer string `json:"recoveryAnswer"`
	NewPassword    string `json:"newPassword"`
}

func (c *Client) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	payload := forgotPasswordPayload{Email: email, RecoveryAnswer: answer, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, c.endpoint("api/v1/auth/forgot-password"), payload, nil)
}

type userEnvelope struct {
	User User `json:"user"`
}

// Profile fetches the server's current view of the signed-in user.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("api/v1/auth/profile"), nil, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}

type ProfileUpdate struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

// UpdateProfile saves profile changes and refreshes the session's display
// copy so the UI does not keep showing stale login-time data.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPut, c.endpoint("api/v1/auth/profile"), in, &out); err != nil {
		return User{}, err
	}

	if current := c.store.Current(); current.LoggedIn() {
		if err := c.store.Set(session.Session{User: profileOf(out.User), Token: current.Token}); err != nil {
			c.log.Warn().Err(err).Msg("persist refreshed session failed")
		}
	}
	return out.User, nil
}

// CheckAuth asks the server whether the stored credential is still honored.
func (c *Client) CheckAuth(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoint("api/v1/auth/check"), nil, nil)
}

// CheckAdmin re-confirms the administrator role server-side. The session's
// role field is display data and never trusted for this.
func (c *Client) CheckAdmin(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoint("api/v1/auth/admin-check"), nil, nil)
}

func (c *Client) signIn(out authEnvelope) session.Session {
	sess := session.Session{User: profileOf(out.User), Token: out.Token}
	if err := c.store.Set(sess); err != nil {
		c.log.Warn().Err(err).Msg("persist session failed")
	}
	return sess
}

func profileOf(user User) *session.Profile {
	return &session.Profile{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Phone:   user.Phone,
		Address: user.Address,
	}
}
