// Package service wires the long-running pieces of the router daemon:
// the HTTP API server and the background execution worker.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldswap/zkrouter/api"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
)

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	zk     *router.Router
	pool   *pool.Manager
	admin  common.Address
	api    *api.API
	mu     sync.Mutex
	cancel context.CancelFunc
	host   string
	port   int
}

// NewAPI creates a new APIService instance.
func NewAPI(zk *router.Router, poolMgr *pool.Manager, admin common.Address, host string, port int) *APIService {
	return &APIService{
		zk:    zk,
		pool:  poolMgr,
		admin: admin,
		host:  host,
		port:  port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	_, as.cancel = context.WithCancel(ctx)

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:   as.host,
		Port:   as.port,
		Router: as.zk,
		Pool:   as.pool,
		Admin:  as.admin,
	})
	if err != nil {
		as.cancel = nil
		return fmt.Errorf("failed to start API server: %w", err)
	}

	return nil
}

// Stop halts the API server, draining in-flight requests and closing the
// listener.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel == nil {
		return
	}
	as.cancel()
	as.cancel = nil
	if as.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := as.api.Shutdown(ctx); err != nil {
			log.Warnw("API server shutdown", "error", err.Error())
		}
		as.api = nil
	}
}

// Addr returns the bound address of the running API server, empty when
// it is not running.
func (as *APIService) Addr() string {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api == nil {
		return ""
	}
	return as.api.Addr()
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
