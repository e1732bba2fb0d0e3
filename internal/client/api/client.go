// Package api is the HTTP client for the storefront API. It owns credential
// attachment for outgoing requests and keeps the session store honest when
// the server stops honoring the stored token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"storefront/internal/client/config"
	"storefront/internal/client/session"
)

var (
	// ErrSessionExpired means the server rejected the stored credential. The
	// client has already purged the session when this is returned.
	ErrSessionExpired = errors.New("session expired, sign in again")

	// ErrAccessDenied means the credential is fine but the role is not.
	ErrAccessDenied = errors.New("access denied")
)

// Fixed middleware bodies. Both denials arrive as 401, so the message is the
// only way to tell a dead credential from an insufficient role.
const (
	authRequiredMessage = "authentication required"
	accessDeniedMessage = "UnAuthorized Access"
)

// Error is a server-reported failure that is neither an auth problem nor a
// transport problem.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	base  *url.URL
	http  *http.Client
	store *session.Store
	log   zerolog.Logger
}

func New(cfg *config.Config, store *session.Store, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &sessionTransport{tokens: store, base: http.DefaultTransport},
		},
		store: store,
		log:   log,
	}, nil
}

// Session exposes the backing store for callers that render session state.
func (c *Client) Session() *session.Store {
	return c.store
}

func (c *Client) endpoint(parts ...string) *url.URL {
	return c.base.JoinPath(parts...)
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.failure(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type apiFailure struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) failure(resp *http.Response) error {
	var fail apiFailure
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&fail)

	msg := fail.Message
	if msg == "" {
		msg = fail.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		switch msg {
		case accessDeniedMessage:
			return ErrAccessDenied
		case authRequiredMessage:
			// The stored credential is dead. Purge it the same way a corrupt
			// session file is purged, so the next start is a clean guest.
			if c.store.Token() != "" {
				if err := c.store.Clear(); err != nil {
					c.log.Warn().Err(err).Msg("clear expired session failed")
				}
			}
			return ErrSessionExpired
		}
	}

	return &Error{Status: resp.StatusCode, Message: msg}
}
