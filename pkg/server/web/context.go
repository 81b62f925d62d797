package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/policy"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// Mailer is the set of upstream operations exposed over HTTP.
type Mailer interface {
	GenerateAddress(ctx context.Context, kind string) (tempmail.EmailAddress, error)
	ListMessages(ctx context.Context, address tempmail.EmailAddress) ([]tempmail.MessageSummary, error)
	FetchMessageDetail(
		ctx context.Context, address tempmail.EmailAddress, id string) (*tempmail.MessageDetail, error)
}

// Context is passed into every request handler function.
type Context struct {
	context.Context
	Vars       map[string]string
	Service    Mailer
	Policy     *policy.Addressing
	RootConfig *config.Root
	Logger     *zerolog.Logger

	cancel context.CancelFunc
}

// Close the Context, abandoning any upstream work still bound to it.
func (c *Context) Close() {
	c.cancel()
}

// NewContext returns a Context for the given HTTP Request. The embedded context.Context ends when
// the client goes away or once the response write timeout has passed, since no response can be
// delivered after that.
func NewContext(req *http.Request) (*Context, error) {
	logger := zerolog.Ctx(req.Context()).With().Str("module", "web").Logger()
	var reqCtx context.Context
	var cancel context.CancelFunc
	if rootConfig != nil && rootConfig.Web.WriteTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(req.Context(), rootConfig.Web.WriteTimeout)
	} else {
		reqCtx, cancel = context.WithCancel(req.Context())
	}
	ctx := &Context{
		Context:    reqCtx,
		Vars:       mux.Vars(req),
		Service:    service,
		Policy:     addrPolicy,
		RootConfig: rootConfig,
		Logger:     &logger,
		cancel:     cancel,
	}
	return ctx, nil
}
