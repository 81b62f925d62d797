// Package server assembles and starts the tempbucket services.
package server

import (
	"context"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/facade"
	"github.com/tempbucket/tempbucket/pkg/policy"
	"github.com/tempbucket/tempbucket/pkg/rest"
	"github.com/tempbucket/tempbucket/pkg/retry"
	"github.com/tempbucket/tempbucket/pkg/server/web"
	"github.com/tempbucket/tempbucket/pkg/session"
	"github.com/tempbucket/tempbucket/pkg/transport"
)

// Services holds the configured and started services.
type Services struct {
	Facade     *facade.Service
	AddrPolicy *policy.Addressing

	webDone chan struct{}
}

// Wait blocks until the web server has shut down.
func (s *Services) Wait() {
	<-s.webDone
}

// Prod wires up the production tempbucket environment. The web server runs until rootCtx is done.
func Prod(rootCtx context.Context, shutdownChan chan bool, conf *config.Root) (*Services, error) {
	svc := NewFacade(conf)
	addrPolicy := &policy.Addressing{Kinds: conf.Upstream.Kinds}

	// Configure routes and start HTTP server.
	prefix := web.MakePathPrefixer(conf.Web.BasePath)
	rest.SetupRoutes(web.Router.PathPrefix(prefix("/api/")).Subrouter())
	rest.SetupStatusRoute(web.Router, prefix("/status"))
	web.Initialize(conf, shutdownChan, svc, addrPolicy)
	webDone := make(chan struct{})
	go func() {
		web.Start(rootCtx)
		close(webDone)
	}()

	return &Services{
		Facade:     svc,
		AddrPolicy: addrPolicy,
		webDone:    webDone,
	}, nil
}

// NewFacade wires the upstream transport, session acquirer and facade together.
func NewFacade(conf *config.Root, opts ...transport.Option) *facade.Service {
	up := conf.Upstream
	fp := transport.Fingerprint{
		UserAgentPool: up.UserAgents,
		StaticHeaders: up.Headers,
	}
	opts = append([]transport.Option{transport.WithTimeout(up.Timeout)}, opts...)
	factory := transport.NewFactory(fp, opts...)

	headers := make(map[string]string)
	if up.Origin != "" {
		headers["Origin"] = up.Origin
	}
	if up.Referer != "" {
		headers["Referer"] = up.Referer
	}
	acquirer := session.NewAcquirer(session.Config{
		HandshakeURL: up.URL(up.HandshakePath),
		TokenCookie:  up.TokenCookie,
		TokenHeader:  up.TokenHeader,
		Headers:      headers,
		Policy: retry.Policy{
			Attempts:        conf.Retry.Attempts,
			InitialInterval: conf.Retry.InitialInterval,
			MaxInterval:     conf.Retry.MaxInterval,
		},
	}, factory)

	return facade.New(acquirer, facade.Endpoints{
		Generate: up.URL(up.GeneratePath),
		List:     up.URL(up.ListPath),
		Message:  up.URL(up.MessagePath),
	}, headers)
}
