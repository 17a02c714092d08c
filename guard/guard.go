// Package guard implements the timing and anti-linkability policies a
// submission must clear before the state transition is applied: the mix
// window (minimum note age) and strict mode (no self-payout, no
// coalesced deposit/submit/execute call sequence).
package guard

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shieldswap/zkrouter/types"
)

var (
	// ErrMixWindow is returned when a note is spent before its minimum
	// age has elapsed. Retryable once real time advances.
	ErrMixWindow = errors.New("note is still inside the mix window")
	// ErrStrictMode is returned when a strict-mode anti-linkability rule
	// is broken. Not retryable as-is; the caller must restructure the
	// call sequence.
	ErrStrictMode = errors.New("strict mode violation")
)

// CallContext carries the execution-context signals used by the
// strict-mode policy. Seq identifies the externally-originated call the
// operation arrived on; two operations sharing a Seq were coalesced into
// one caller-controlled sequence. This is an enforcement point, not a
// cryptographic guarantee.
type CallContext struct {
	Caller common.Address
	Seq    uuid.UUID
}

// NewCallContext returns a fresh context with a random sequence ID,
// to be assigned once per externally-originated call.
func NewCallContext(caller common.Address) CallContext {
	return CallContext{Caller: caller, Seq: uuid.New()}
}

// CheckSpendable fails with ErrMixWindow if the note is younger than
// minAge at the given instant.
func CheckSpendable(note *types.Note, minAge time.Duration, now time.Time) error {
	spendableAt := note.CreatedAt.Add(minAge)
	if now.Before(spendableAt) {
		return fmt.Errorf("%w: spendable in %s", ErrMixWindow, spendableAt.Sub(now).Round(time.Second))
	}
	return nil
}

// CheckStrict applies the strict-mode rules to a spend of note paying
// recipient, arriving on call context ctx:
//   - the recipient must not be the note's depositor (no self-payout);
//   - the submission must not share a call sequence with the deposit.
//
// It is a no-op unless strict mode is enabled in the config.
func CheckStrict(cfg *types.PoolConfig, note *types.Note, recipient common.Address, ctx CallContext) error {
	if !cfg.StrictMode {
		return nil
	}
	if recipient == note.Depositor {
		return fmt.Errorf("%w: recipient equals depositor", ErrStrictMode)
	}
	if note.DepositSeq != uuid.Nil && note.DepositSeq == ctx.Seq {
		return fmt.Errorf("%w: deposit and submission share one call sequence", ErrStrictMode)
	}
	return nil
}

// CheckStrictExecute rejects an execution arriving on the same call
// sequence the action was submitted on.
func CheckStrictExecute(cfg *types.PoolConfig, action *types.Action, ctx CallContext) error {
	if !cfg.StrictMode {
		return nil
	}
	if action.SubmitSeq != uuid.Nil && action.SubmitSeq == ctx.Seq {
		return fmt.Errorf("%w: submission and execution share one call sequence", ErrStrictMode)
	}
	return nil
}
