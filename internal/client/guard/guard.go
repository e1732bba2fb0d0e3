// Package guard decides whether a protected view may be shown. The session's
// stored role is never enough on its own; privileged levels are re-confirmed
// with a server round-trip before anything renders.
package guard

import (
	"context"
	"time"
)

// Level is the privilege a view requires.
type Level int

const (
	LevelPublic Level = iota
	LevelStandard
	LevelAdmin
)

// Status is the guard's state machine. Every evaluation starts Unchecked,
// passes through Checking while the server round-trip is in flight, and ends
// Authorized or Denied. An expired credential is not a distinct state; it
// denies like a missing one.
type Status int

const (
	StatusUnchecked Status = iota
	StatusChecking
	StatusAuthorized
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusUnchecked:
		return "unchecked"
	case StatusChecking:
		return "checking"
	case StatusAuthorized:
		return "authorized"
	case StatusDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// DefaultRedirectDelay smooths the handoff to the login view after a denial.
// It is presentation, not a security boundary.
const DefaultRedirectDelay = 3 * time.Second

// TokenSource reports the session's current token.
type TokenSource interface {
	Token() string
}

// Probe re-validates the credential with the server. Implemented by the API
// client against the check endpoints.
type Probe interface {
	CheckAuth(ctx context.Context) error
	CheckAdmin(ctx context.Context) error
}

// Decision is the outcome of one evaluation. RedirectTo is empty when no
// navigation should happen, RedirectAfter is how long to show the countdown
// first, and ReturnTo preserves the destination the user was after.
type Decision struct {
	Status        Status
	RedirectTo    string
	RedirectAfter time.Duration
	ReturnTo      string
}

type Guard struct {
	session TokenSource
	probe   Probe
	delay   time.Duration

	// Observer, when set, sees each state the evaluation passes through.
	Observer func(Status)
}

func New(session TokenSource, probe Probe, delay time.Duration) *Guard {
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	return &Guard{session: session, probe: probe, delay: delay}
}

// Evaluate runs the state machine once for the given level. There is exactly
// one probe attempt and no retry; a failed round-trip is a denial. A
// cancelled ctx denies without scheduling any redirect, so an abandoned view
// cannot navigate after the fact.
func (g *Guard) Evaluate(ctx context.Context, level Level, returnTo string) Decision {
	g.observe(StatusUnchecked)

	if level == LevelPublic {
		g.observe(StatusAuthorized)
		return Decision{Status: StatusAuthorized}
	}

	if g.session.Token() == "" {
		g.observe(StatusDenied)
		return Decision{Status: StatusDenied, RedirectTo: "login", ReturnTo: returnTo}
	}

	g.observe(StatusChecking)

	var err error
	if level == LevelAdmin {
		err = g.probe.CheckAdmin(ctx)
	} else {
		err = g.probe.CheckAuth(ctx)
	}

	if ctx.Err() != nil {
		g.observe(StatusDenied)
		return Decision{Status: StatusDenied}
	}
	if err != nil {
		g.observe(StatusDenied)
		return Decision{Status: StatusDenied, RedirectTo: "login", RedirectAfter: g.delay, ReturnTo: returnTo}
	}

	g.observe(StatusAuthorized)
	return Decision{Status: StatusAuthorized}
}

func (g *Guard) observe(status Status) {
	if g.Observer != nil {
		g.Observer(status)
	}
}
