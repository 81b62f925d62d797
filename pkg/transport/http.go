package transport

import (
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// HTTPTransport is a Transport backed by net/http with its own cookie jar. It is meant for a
// single session and is not safe for concurrent use.
type HTTPTransport struct {
	client httpClient
	jar    http.CookieJar
	fp     Fingerprint
	rnd    *rand.Rand
	logger zerolog.Logger
}

// Options holds the settings applied by New.
type Options struct {
	roundTripper http.RoundTripper
	timeout      time.Duration
	rnd          *rand.Rand
}

func getDefaultOptions() *Options {
	return &Options{
		timeout: 30 * time.Second,
	}
}

// Option configures New.
type Option func(*Options)

// WithRoundTripper sets the round tripper used by the underlying http.Client.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *Options) {
		o.roundTripper = rt
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.timeout = d
	}
}

// WithRand sets the random source used to pick user agents. A rand.Rand is not safe for
// concurrent use, so do not share one between transports that run in parallel.
func WithRand(rnd *rand.Rand) Option {
	return func(o *Options) {
		o.rnd = rnd
	}
}

// New creates an HTTPTransport with an empty cookie jar.
func New(fp Fingerprint, opts ...Option) (*HTTPTransport, error) {
	o := getDefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	rnd := o.rnd
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &HTTPTransport{
		client: &http.Client{
			Jar:       jar,
			Timeout:   o.timeout,
			Transport: o.roundTripper,
		},
		jar:    jar,
		fp:     fp,
		rnd:    rnd,
		logger: log.With().Str("module", "transport").Logger(),
	}, nil
}

// NewFactory returns a Factory producing a fresh HTTPTransport per call.
func NewFactory(fp Fingerprint, opts ...Option) Factory {
	return func() (Transport, error) {
		return New(fp, opts...)
	}
}
