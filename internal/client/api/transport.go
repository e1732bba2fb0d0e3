package api

import "net/http"

// TokenSource is the slice of the session store the transport needs.
type TokenSource interface {
	Token() string
}

// sessionTransport composes the current bearer token into each outgoing
// request at call time. Because the header is derived from the session per
// request, a logout is reflected on the very next call; there is no shared
// default header to mutate or forget to reset. A header set explicitly by the
// caller wins.
type sessionTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.tokens.Token()
	if token == "" || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", token)
	return t.base.RoundTrip(clone)
}
