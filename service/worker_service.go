package service

import (
	"context"
	"time"

	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/router"
)

// WorkerService represents a service that handles background action
// execution.
type WorkerService struct {
	worker *router.Worker
}

// NewWorker creates a new execution worker service. It drains the pending
// action queue at the given poll interval, dispatching each action to its
// target executor; retryable failures are picked up again on a later pass.
func NewWorker(zk *router.Router, pollInterval time.Duration) *WorkerService {
	w, err := router.NewWorker(zk, pollInterval)
	if err != nil {
		log.Fatalf("failed to create execution worker: %v", err)
	}
	return &WorkerService{
		worker: w,
	}
}

// Start begins the action execution service. It returns an error if the
// service is already running.
func (ws *WorkerService) Start(ctx context.Context) error {
	return ws.worker.Start(ctx)
}

// Stop halts the action execution service.
func (ws *WorkerService) Stop() {
	ws.worker.Stop()
}
