package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storefront/internal/client/api"
	"storefront/internal/client/config"
	"storefront/internal/client/guard"
	"storefront/internal/client/session"
	"storefront/internal/log"
)

var serverURL string

// env wires the pieces every command needs. Built per invocation; the session
// restore inside is once-per-process either way.
type env struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	guard  *guard.Guard
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	logger := log.NewCLI()

	store := session.NewStore(cfg.SessionPath(), logger)
	store.Restore()

	client, err := api.New(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	g := guard.New(store, client, cfg.RedirectDelay)
	g.Observer = func(s guard.Status) {
		if s == guard.StatusChecking {
			fmt.Fprintln(os.Stderr, "checking access...")
		}
	}

	return &env{cfg: cfg, store: store, client: client, guard: g}, nil
}

// requireLevel consults the guard before a protected view and turns a denial
// into a user-facing error.
func (e *env) requireLevel(ctx context.Context, level guard.Level, view string) error {
	decision := e.guard.Evaluate(ctx, level, view)
	switch decision.Status {
	case guard.StatusAuthorized:
		return nil
	case guard.StatusDenied:
		if decision.RedirectTo == "" {
			return errors.New("authorization check aborted")
		}
		if decision.RedirectAfter > 0 {
			return fmt.Errorf("access to %s denied, sign in with 'storectl login' and retry", view)
		}
		return errors.New("not signed in, run 'storectl login' first")
	default:
		return fmt.Errorf("unexpected guard state %s", decision.Status)
	}
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
