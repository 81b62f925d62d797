// Package session performs the upstream handshake that yields a cookie-carrying transport and an
// anti-forgery token.
package session

import (
	"context"
	"expvar"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tempbucket/tempbucket/pkg/retry"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
	"github.com/tempbucket/tempbucket/pkg/transport"
)

var (
	expHandshakeAttempts = new(expvar.Int)
	expHandshakeFailures = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("session")
	m.Set("HandshakeAttempts", expHandshakeAttempts)
	m.Set("HandshakeFailures", expHandshakeFailures)
}

// Config describes the handshake.
type Config struct {
	HandshakeURL string            // Page whose response sets the token cookie.
	TokenCookie  string            // Name of the anti-forgery cookie, ex: XSRF-TOKEN.
	TokenHeader  string            // Header the token is echoed in, ex: X-XSRF-TOKEN.
	Headers      map[string]string // Extra headers sent with the handshake.
	Policy       retry.Policy
}

// Context is the state needed to make authorized calls to the upstream. It belongs to a single
// logical operation and must not be reused across operations.
type Context struct {
	Transport   transport.Transport
	Token       string
	TokenHeader string
}

// Headers returns the request headers that authorize a call, merged over extra.
func (c *Context) Headers(extra map[string]string) map[string]string {
	h := make(map[string]string, len(extra)+1)
	for name, value := range extra {
		h[name] = value
	}
	h[c.TokenHeader] = c.Token
	return h
}

// Acquirer obtains session Contexts.
type Acquirer struct {
	cfg       Config
	factory   transport.Factory
	retryOpts []retry.Option
}

// NewAcquirer creates an Acquirer that builds a fresh transport from factory for every attempt.
// retryOpts are passed through to retry.Do.
func NewAcquirer(cfg Config, factory transport.Factory, retryOpts ...retry.Option) *Acquirer {
	return &Acquirer{cfg: cfg, factory: factory, retryOpts: retryOpts}
}

// Acquire performs the handshake, retrying per the configured policy. It fails with
// tempmail.ErrUpstreamUnavailable or tempmail.ErrTokenMissing once attempts are exhausted, or with
// ctx.Err() if ctx ends first.
func (a *Acquirer) Acquire(ctx context.Context) (*Context, error) {
	base := log.Logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	logger := base.With().Str("module", "session").Str("url", a.cfg.HandshakeURL).Logger()
	var sc *Context
	notify := retry.WithNotify(func(attempt int, err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).
			Msg("Handshake failed, will retry")
	})
	opts := append([]retry.Option{notify}, a.retryOpts...)
	err := retry.Do(ctx, a.cfg.Policy, func(ctx context.Context, attempt int) error {
		s, err := a.attempt(ctx)
		if err != nil {
			expHandshakeFailures.Add(1)
			return err
		}
		sc = s
		return nil
	}, opts...)
	if err != nil {
		logger.Error().Err(err).Msg("Handshake gave up")
		return nil, err
	}
	logger.Debug().Msg("Session acquired")
	return sc, nil
}

// attempt performs one independent handshake.
func (a *Acquirer) attempt(ctx context.Context) (*Context, error) {
	expHandshakeAttempts.Add(1)
	t, err := a.factory()
	if err != nil {
		return nil, tempmail.NewError(tempmail.KindUpstreamUnavailable, "handshake", 0,
			fmt.Errorf("creating transport: %w", err))
	}
	resp, err := t.Get(ctx, a.cfg.HandshakeURL, a.cfg.Headers)
	if err != nil {
		return nil, tempmail.NewError(tempmail.KindUpstreamUnavailable, "handshake", 0, err)
	}
	if !resp.OK() {
		return nil, tempmail.NewError(tempmail.KindUpstreamUnavailable, "handshake", resp.Status, nil)
	}
	raw, ok := resp.Cookies[a.cfg.TokenCookie]
	if !ok || raw == "" {
		return nil, tempmail.NewError(tempmail.KindTokenMissing, "handshake", resp.Status,
			fmt.Errorf("no %s cookie", a.cfg.TokenCookie))
	}
	return &Context{
		Transport:   t,
		Token:       DecodeToken(raw),
		TokenHeader: a.cfg.TokenHeader,
	}, nil
}

// DecodeToken percent-decodes a cookie value. '+' is kept as is, and a value with an invalid
// escape sequence is returned unchanged.
func DecodeToken(raw string) string {
	token, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return token
}
