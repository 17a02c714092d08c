package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host   string
	Port   int
	Router *router.Router
	Pool   *pool.Manager
	// Admin is the address allowed to mutate the pool configuration.
	Admin common.Address
}

// API type represents the API HTTP server exposing the shielded pool
// router: deposits, action submission and execution, and pool queries.
type API struct {
	mux   *chi.Mux
	srv   *http.Server
	ln    net.Listener
	zk    *router.Router
	pool  *pool.Manager
	admin common.Address
}

// New creates a new API instance with the given configuration, binds the
// listener and starts serving.
func New(conf *APIConfig) (*API, error) {
	a, err := NewHandler(conf)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind API listener: %w", err)
	}
	a.ln = ln
	a.srv = &http.Server{Handler: a.mux}
	go func() {
		log.Infow("Starting API server", "addr", ln.Addr().String())
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Addr returns the address the API server is bound to, empty when no
// listener was started.
func (a *API) Addr() string {
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

// Shutdown gracefully stops the HTTP server, draining in-flight
// requests. The listener is closed and no new connections are accepted.
func (a *API) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}

// NewHandler builds the API and its routes without binding a listener,
// for embedding under an existing server (and for tests).
func NewHandler(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Router == nil {
		return nil, fmt.Errorf("missing router instance")
	}
	if conf.Pool == nil {
		return nil, fmt.Errorf("missing pool manager instance")
	}
	a := &API{
		zk:    conf.Router,
		pool:  conf.Pool,
		admin: conf.Admin,
	}
	a.initRouter()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.mux
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.mux.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", DepositsEndpoint, "method", "POST")
	a.mux.Post(DepositsEndpoint, a.newDeposit)
	log.Infow("register handler", "endpoint", ActionsEndpoint, "method", "POST")
	a.mux.Post(ActionsEndpoint, a.submitAction)
	log.Infow("register handler", "endpoint", ActionEndpoint, "method", "GET")
	a.mux.Get(ActionEndpoint, a.action)
	log.Infow("register handler", "endpoint", ExecuteActionEndpoint, "method", "POST")
	a.mux.Post(ExecuteActionEndpoint, a.executeAction)
	log.Infow("register handler", "endpoint", RootEndpoint, "method", "GET")
	a.mux.Get(RootEndpoint, a.poolRoot)
	log.Infow("register handler", "endpoint", NullifierEndpoint, "method", "GET")
	a.mux.Get(NullifierEndpoint, a.nullifierStatus)
	log.Infow("register handler", "endpoint", CommitmentProofEndpoint, "method", "GET")
	a.mux.Get(CommitmentProofEndpoint, a.commitmentProof)
	log.Infow("register handler", "endpoint", ConfigEndpoint, "method", "GET")
	a.mux.Get(ConfigEndpoint, a.poolConfig)
	log.Infow("register handler", "endpoint", ConfigEndpoint, "method", "PUT")
	a.mux.Put(ConfigEndpoint, a.updatePoolConfig)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.mux = chi.NewRouter()
	a.mux.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", CallerHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.mux.Use(middleware.Logger)
	a.mux.Use(middleware.Recoverer)
	a.mux.Use(middleware.Throttle(100))
	a.mux.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.mux.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
