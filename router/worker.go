package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shieldswap/zkrouter/guard"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/types"
)

// Worker drains the pending-action queue in the background, executing
// each action with its own bound parameters. Retryable failures release
// the reservation so a later pass picks the action up again.
type Worker struct {
	router   *Router
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewWorker creates a background execution worker polling the queue at
// the given interval.
func NewWorker(r *Router, interval time.Duration) (*Worker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	return &Worker{router: r, interval: interval}, nil
}

// Start begins draining the queue until the context is canceled or Stop
// is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return fmt.Errorf("worker already running")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	log.Infow("execution worker started", "interval", w.interval.String())
	return nil
}

// Stop halts the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Infow("execution worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain executes every available pending action once. Actions failing
// retryably are released and not re-attempted until the next pass.
func (w *Worker) drain(ctx context.Context) {
	attempted := make(map[string]bool)
	for {
		action, _, err := w.router.stg.NextPendingAction()
		if errors.Is(err, storage.ErrNoMoreElements) {
			return
		}
		if err != nil {
			log.Warnw("pulling pending action", "error", err.Error())
			return
		}
		if attempted[action.ID.String()] {
			if rerr := w.router.stg.ReleaseAction(action.ID); rerr != nil {
				log.Warnw("releasing re-pulled action", "error", rerr.Error())
			}
			return
		}
		attempted[action.ID.String()] = true
		// Execution parameters come from the bound action itself, so the
		// binding re-check trivially holds; the worker runs on a fresh
		// call sequence so strict mode is satisfied.
		params := types.ExecutionParams{
			Type:      action.Type,
			Asset:     action.Asset,
			Amount:    action.Amount,
			Recipient: action.Recipient,
		}
		// ExecuteAction settles or releases the reservation (the queue
		// key is the action ID).
		if _, err := w.router.ExecuteAction(ctx, action.ID, params,
			guard.NewCallContext(action.Recipient)); err != nil {
			log.Warnw("background execution failed",
				"id", action.ID.String(), "error", err.Error())
			continue
		}
	}
}
