package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "LolWeather/1.0"
)

type Option func(*http.Client, *userAgentTransport)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *http.Client, _ *userAgentTransport) {
		c.Timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(_ *http.Client, t *userAgentTransport) {
		t.userAgent = ua
	}
}

// NewClient returns an HTTP client with the standard timeout that stamps a
// User-Agent on every outgoing request.
func NewClient(opts ...Option) *http.Client {
	t := &userAgentTransport{base: http.DefaultTransport, userAgent: DefaultUserAgent}
	c := &http.Client{Timeout: DefaultTimeout, Transport: t}
	for _, opt := range opts {
		opt(c, t)
	}
	return c
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" || t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
