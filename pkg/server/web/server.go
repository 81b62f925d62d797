// Package web provides the plumbing for tempbucket's REST API.
package web

import (
	"context"
	"errors"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/policy"
)

var (
	// service performs the upstream operations for handlers.
	service    Mailer
	addrPolicy *policy.Addressing
	rootConfig *config.Root

	// Router is shared between the web and rest packages. It sends incoming requests to the
	// correct handler function.
	Router = mux.NewRouter()

	server         *http.Server
	listener       net.Listener
	globalShutdown chan bool

	// ExpRequestsTotal counts API requests served.
	ExpRequestsTotal = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("http")
	m.Set("RequestsTotal", ExpRequestsTotal)
}

// Initialize sets up things for unit tests or the Start() method.
func Initialize(
	conf *config.Root,
	shutdownChan chan bool,
	svc Mailer,
	ap *policy.Addressing,
) {
	rootConfig = conf
	globalShutdown = shutdownChan
	service = svc
	addrPolicy = ap

	prefix := MakePathPrefixer(conf.Web.BasePath)
	if conf.Web.ExposeVars {
		Router.Path(prefix("/debug/vars")).Handler(expvar.Handler()).Methods("GET")
	}
	Router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	Router.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")

	server = &http.Server{
		Addr:         conf.Web.Addr,
		Handler:      requestLoggingWrapper(Router),
		ReadTimeout:  conf.Web.ReadTimeout,
		WriteTimeout: conf.Web.WriteTimeout,
	}
}

// Start begins listening for HTTP requests, returns once ctx is done and the server has stopped.
func Start(ctx context.Context) {
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", server.Addr).
		Logger()
	slog.Info().Msg("HTTP listening on tcp4")
	var err error
	listener, err = net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP4 listener")
		emergencyShutdown()
		return
	}

	// Listener go routine.
	go serve(ctx)

	// Wait for shutdown.
	<-ctx.Done()
	log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		log.Error().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("HTTP server did not shut down cleanly")
	}
}

// serve begins serving HTTP requests.
func serve(ctx context.Context) {
	// server.Serve blocks until Shutdown is called.
	err := server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return
	}
	select {
	case <-ctx.Done():
		// Nop
	default:
		log.Error().Str("module", "web").Err(err).Msg("HTTP server failed")
		emergencyShutdown()
	}
}

func emergencyShutdown() {
	select {
	case <-globalShutdown:
	default:
		close(globalShutdown)
	}
}
