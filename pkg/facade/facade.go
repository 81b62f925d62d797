// Package facade implements the address, listing and message operations against the upstream
// temporary-email site.
package facade

import (
	"context"
	"expvar"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tempbucket/tempbucket/pkg/session"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

var expUpstreamErrors = new(expvar.Map).Init()

func init() {
	m := expvar.NewMap("facade")
	m.Set("UpstreamErrors", expUpstreamErrors)
}

// Endpoints are the upstream URLs the operations post to.
type Endpoints struct {
	Generate string
	List     string
	Message  string
}

// Acquirer supplies an authorized session per operation.
type Acquirer interface {
	Acquire(ctx context.Context) (*session.Context, error)
}

// Service performs the operations. It holds no per-call state and is safe for concurrent use.
type Service struct {
	acquirer  Acquirer
	endpoints Endpoints
	headers   map[string]string
}

// New creates a Service. headers are sent with every operation request, in addition to the
// session's token header.
func New(acquirer Acquirer, endpoints Endpoints, headers map[string]string) *Service {
	return &Service{acquirer: acquirer, endpoints: endpoints, headers: headers}
}

// post acquires a session and posts body to url. Status interpretation is left to the caller.
func (s *Service) post(ctx context.Context, op, url string, body interface{}) (string, int, error) {
	sc, err := s.acquirer.Acquire(ctx)
	if err != nil {
		return "", 0, err
	}
	resp, err := sc.Transport.Post(ctx, url, sc.Headers(s.headers), body)
	if err != nil {
		return "", 0, tempmail.NewError(tempmail.KindUpstreamUnavailable, op, 0, err)
	}
	if !resp.OK() {
		expUpstreamErrors.Add(op, 1)
		logger(ctx, op).Warn().Int("status", resp.Status).Msg("Upstream rejected request")
		return "", resp.Status, tempmail.NewError(tempmail.KindUpstreamError, op, resp.Status, nil)
	}
	return resp.Body, resp.Status, nil
}

// logger returns a facade logger derived from the one attached to ctx, falling back to the global
// logger, so web request ids carry through.
func logger(ctx context.Context, op string) *zerolog.Logger {
	base := log.Logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	l := base.With().Str("module", "facade").Str("op", op).Logger()
	return &l
}

// isBlank reports whether s holds nothing but whitespace.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
