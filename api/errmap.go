package api

import (
	"errors"
	"net/http"

	"github.com/shieldswap/zkrouter/guard"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/state"
	"github.com/shieldswap/zkrouter/storage"
)

// writeRouterError maps the protocol sentinel errors onto the numbered
// API errors, falling back to a generic bad request.
func writeRouterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, router.ErrInvalidProof):
		ErrInvalidProof.WithErr(err).Write(w)
	case errors.Is(err, router.ErrBindingMismatch):
		ErrBindingMismatch.WithErr(err).Write(w)
	case errors.Is(err, router.ErrDepositsClosed):
		ErrDepositsClosed.WithErr(err).Write(w)
	case errors.Is(err, router.ErrUnknownAction):
		ErrActionNotFound.WithErr(err).Write(w)
	case errors.Is(err, router.ErrAlreadyExecuted):
		ErrActionAlreadySettled.WithErr(err).Write(w)
	case errors.Is(err, router.ErrExecutorFailure):
		ErrExecutorUnavailable.WithErr(err).Write(w)
	case errors.Is(err, router.ErrUnknownPool):
		ErrMalformedPoolVersion.WithErr(err).Write(w)
	case errors.Is(err, state.ErrStaleRoot):
		ErrStaleRoot.WithErr(err).Write(w)
	case errors.Is(err, state.ErrNullifierReused):
		ErrNullifierReused.WithErr(err).Write(w)
	case errors.Is(err, state.ErrNoteNotFound):
		ErrResourceNotFound.WithErr(err).Write(w)
	case errors.Is(err, guard.ErrMixWindow):
		ErrMixWindowNotElapsed.WithErr(err).Write(w)
	case errors.Is(err, guard.ErrStrictMode):
		ErrStrictModeViolation.WithErr(err).Write(w)
	case errors.Is(err, pool.ErrUnauthorized):
		ErrUnauthorized.WithErr(err).Write(w)
	case errors.Is(err, storage.ErrNotFound):
		ErrResourceNotFound.WithErr(err).Write(w)
	default:
		ErrMalformedBody.WithErr(err).Write(w)
	}
}
