package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token string
}

func (f fakeTokens) Token() string { return f.token }

type fakeProbe struct {
	authErr    error
	adminErr   error
	authCalls  int
	adminCalls int
	block      bool
}

func (f *fakeProbe) CheckAuth(ctx context.Context) error {
	f.authCalls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.authErr
}

func (f *fakeProbe) CheckAdmin(ctx context.Context) error {
	f.adminCalls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.adminErr
}

func TestEvaluate(t *testing.T) {
	t.Run("public level never probes", func(t *testing.T) {
		probe := &fakeProbe{}
		g := New(fakeTokens{}, probe, 0)

		decision := g.Evaluate(context.Background(), LevelPublic, "/home")

		require.Equal(t, StatusAuthorized, decision.Status)
		require.Zero(t, probe.authCalls)
		require.Zero(t, probe.adminCalls)
	})

	t.Run("no token denies immediately with destination preserved", func(t *testing.T) {
		probe := &fakeProbe{}
		g := New(fakeTokens{token: ""}, probe, 0)

		decision := g.Evaluate(context.Background(), LevelStandard, "/orders")

		require.Equal(t, StatusDenied, decision.Status)
		require.Equal(t, "login", decision.RedirectTo)
		require.Equal(t, "/orders", decision.ReturnTo)
		require.Zero(t, decision.RedirectAfter)
		require.Zero(t, probe.authCalls, "no round-trip without a token")
	})

	t.Run("valid token authorizes through the probe", func(t *testing.T) {
		probe := &fakeProbe{}
		g := New(fakeTokens{token: "tok"}, probe, 0)

		var states []Status
		g.Observer = func(s Status) { states = append(states, s) }

		decision := g.Evaluate(context.Background(), LevelStandard, "/orders")

		require.Equal(t, StatusAuthorized, decision.Status)
		require.Equal(t, 1, probe.authCalls)
		require.Equal(t, []Status{StatusUnchecked, StatusChecking, StatusAuthorized}, states)
	})

	t.Run("admin level uses the admin probe", func(t *testing.T) {
		probe := &fakeProbe{}
		g := New(fakeTokens{token: "tok"}, probe, 0)

		decision := g.Evaluate(context.Background(), LevelAdmin, "/admin")

		require.Equal(t, StatusAuthorized, decision.Status)
		require.Equal(t, 1, probe.adminCalls)
		require.Zero(t, probe.authCalls)
	})

	t.Run("probe failure denies with countdown", func(t *testing.T) {
		probe := &fakeProbe{adminErr: errors.New("access denied")}
		g := New(fakeTokens{token: "tok"}, probe, 2*time.Second)

		decision := g.Evaluate(context.Background(), LevelAdmin, "/admin")

		require.Equal(t, StatusDenied, decision.Status)
		require.Equal(t, "login", decision.RedirectTo)
		require.Equal(t, 2*time.Second, decision.RedirectAfter)
		require.Equal(t, "/admin", decision.ReturnTo)
		require.Equal(t, 1, probe.adminCalls, "single attempt, no retry")
	})

	t.Run("cancellation denies without redirect", func(t *testing.T) {
		probe := &fakeProbe{block: true}
		g := New(fakeTokens{token: "tok"}, probe, 0)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		decision := g.Evaluate(ctx, LevelStandard, "/orders")

		require.Equal(t, StatusDenied, decision.Status)
		require.Empty(t, decision.RedirectTo, "no navigation after cancellation")
		require.Zero(t, decision.RedirectAfter)
	})
}

func TestNewDefaultsDelay(t *testing.T) {
	probe := &fakeProbe{authErr: errors.New("expired")}
	g := New(fakeTokens{token: "tok"}, probe, 0)

	decision := g.Evaluate(context.Background(), LevelStandard, "")

	require.Equal(t, DefaultRedirectDelay, decision.RedirectAfter)
}
