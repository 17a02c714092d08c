// Package router implements the proof-gated action pipeline: deposits
// into the shielded pool, submission of proof-bound actions (root CAS,
// proof verification, nullifier staging, binding cross-check, guard
// policies, atomic apply) and their later execution through the
// per-domain target executors.
package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldswap/zkrouter/crypto/binding"
	"github.com/shieldswap/zkrouter/guard"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/state"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/types"
	"github.com/shieldswap/zkrouter/util"
	"github.com/shieldswap/zkrouter/verifier"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
)

var (
	// ErrInvalidProof is returned when the proof fails verification.
	// Fatal, no state change.
	ErrInvalidProof = errors.New("proof verification failed")
	// ErrBindingMismatch is returned when execution or submission
	// parameters disagree with the bound action hash or the proof's
	// public inputs. Fatal.
	ErrBindingMismatch = errors.New("action binding mismatch")
	// ErrDepositsClosed is returned for deposits into a redeem-only pool.
	ErrDepositsClosed = errors.New("pool is redeem-only, deposits closed")
	// ErrUnknownAction is returned when the action ID is not known.
	ErrUnknownAction = errors.New("unknown action")
	// ErrAlreadyExecuted is returned when the action is in a terminal
	// state already.
	ErrAlreadyExecuted = errors.New("action already settled")
	// ErrExecutorFailure wraps a retryable downstream executor error;
	// the action stays pending.
	ErrExecutorFailure = errors.New("executor failure")
	// ErrUnknownPool is returned for an unknown pool version.
	ErrUnknownPool = errors.New("unknown pool version")
)

// Router wires the shielded states, the verifier, the guards and the
// target executors into the deposit/submit/execute protocol.
type Router struct {
	states    map[types.PoolVersion]*state.State
	stg       *storage.Storage
	pool      *pool.Manager
	verifier  verifier.ProofVerifier
	executors Executors

	// execMu serializes executions so an action has at most one
	// effective success.
	execMu sync.Mutex
}

// New creates a Router over the given database, opening one shielded
// state per known pool version.
func New(database db.Database, stg *storage.Storage, poolMgr *pool.Manager, pv verifier.ProofVerifier, executors Executors) (*Router, error) {
	if err := executors.check(); err != nil {
		return nil, err
	}
	states := make(map[types.PoolVersion]*state.State, 2)
	for _, v := range []types.PoolVersion{types.PoolVersionV2, types.PoolVersionV3} {
		st, err := state.New(database, v)
		if err != nil {
			return nil, fmt.Errorf("open state %s: %w", v, err)
		}
		states[v] = st
	}
	return &Router{
		states:    states,
		stg:       stg,
		pool:      poolMgr,
		verifier:  pv,
		executors: executors,
	}, nil
}

func (r *Router) stateOf(v types.PoolVersion) (*state.State, error) {
	st, ok := r.states[v]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPool, v)
	}
	return st, nil
}

// RootOf returns the current root of the given pool version.
func (r *Router) RootOf(v types.PoolVersion) (types.HexBytes, error) {
	st, err := r.stateOf(v)
	if err != nil {
		return nil, err
	}
	return st.Root()
}

// IsNullifierUsed reports whether the nullifier has been consumed in the
// given pool version.
func (r *Router) IsNullifierUsed(v types.PoolVersion, nullifier types.HexBytes) (bool, error) {
	st, err := r.stateOf(v)
	if err != nil {
		return false, err
	}
	return st.IsNullifierUsed(nullifier)
}

// CommitmentProof generates a merkle proof for a commitment against the
// current root of the given pool version.
func (r *Router) CommitmentProof(v types.PoolVersion, commitment types.HexBytes) (*state.CommitmentProof, error) {
	st, err := r.stateOf(v)
	if err != nil {
		return nil, err
	}
	return st.GenCommitmentProof(commitment)
}

// ProjectedRoot returns the root the given pool would have after
// appending the commitments, without mutating state.
func (r *Router) ProjectedRoot(v types.PoolVersion, commitments []types.HexBytes) (types.HexBytes, error) {
	st, err := r.stateOf(v)
	if err != nil {
		return nil, err
	}
	return st.ProjectedRoot(commitments)
}

// Action loads an action by ID.
func (r *Router) Action(id types.HexBytes) (*types.Action, error) {
	a, err := r.stg.Action(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %x", ErrUnknownAction, id)
	}
	return a, nil
}

// DepositRequest are the parameters of a shielded deposit.
type DepositRequest struct {
	// PoolVersion of the deposit; zero means the configured default.
	PoolVersion     types.PoolVersion
	Denomination    *big.Int
	LockedRecipient common.Address
	Depositor       common.Address
}

// Deposit creates a note binding the denomination and the locked
// recipient, appends its commitment to the pool's registry and advances
// the root. Returns the created note (the commitment identifies it).
func (r *Router) Deposit(req DepositRequest, ctx guard.CallContext) (*types.Note, error) {
	cfg := r.pool.Snapshot()
	version := req.PoolVersion
	if version == 0 {
		version = cfg.DefaultVersion
	}
	st, err := r.stateOf(version)
	if err != nil {
		return nil, err
	}
	if version == types.PoolVersionV2 && cfg.V2RedeemOnly {
		return nil, fmt.Errorf("%w: %s", ErrDepositsClosed, version)
	}
	if req.Denomination == nil || req.Denomination.Sign() <= 0 {
		return nil, fmt.Errorf("invalid denomination")
	}

	rho := util.RandomBytes(32)
	commitment, err := state.ComputeCommitment(version, req.Denomination, req.LockedRecipient, rho)
	if err != nil {
		return nil, err
	}
	note := &types.Note{
		Commitment:      commitment,
		PoolVersion:     version,
		CreatedAt:       time.Now(),
		Denomination:    (*types.BigInt)(new(big.Int).Set(req.Denomination)),
		LockedRecipient: req.LockedRecipient,
		Depositor:       req.Depositor,
		DepositSeq:      ctx.Seq,
	}
	root, err := st.AddNote(note)
	if err != nil {
		return nil, err
	}
	log.Infow("deposit accepted",
		"pool", version.String(),
		"commitment", note.Commitment.String(),
		"root", root.String())
	return note, nil
}

// Submission is a proof-bearing action submitted by a relayer.
type Submission struct {
	Type        types.ActionType
	PoolVersion types.PoolVersion
	OldRoot     types.HexBytes
	NewRoot     types.HexBytes
	Nullifiers  []types.HexBytes
	Commitments []types.HexBytes
	// SpentCommitments name the notes consumed by this submission, one
	// per nullifier, so the mix-window and strict-mode guards can be
	// applied to them. The set is part of the proof's public inputs; a
	// relayer cannot omit or substitute notes.
	SpentCommitments []types.HexBytes

	Asset     common.Address
	Amount    *big.Int
	Recipient common.Address

	PublicInputs []*big.Int
	Proof        types.HexBytes
}

// publicInputsMatch cross-checks the declared submission parameters
// against the proof's public inputs, which are laid out as
// [oldRoot, newRoot, actionHash, nullifier..., commitment...,
// spentCommitment...].
func publicInputsMatch(sub *Submission, actionHash types.HexBytes) bool {
	want := 3 + len(sub.Nullifiers) + len(sub.Commitments) + len(sub.SpentCommitments)
	if len(sub.PublicInputs) != want {
		return false
	}
	if sub.PublicInputs[0].Cmp(arbo.BytesToBigInt(sub.OldRoot)) != 0 {
		return false
	}
	if sub.PublicInputs[1].Cmp(arbo.BytesToBigInt(sub.NewRoot)) != 0 {
		return false
	}
	if sub.PublicInputs[2].Cmp(binding.AsBigInt(actionHash)) != 0 {
		return false
	}
	rest := sub.PublicInputs[3:]
	for i, n := range sub.Nullifiers {
		if rest[i].Cmp(new(big.Int).SetBytes(n)) != 0 {
			return false
		}
	}
	rest = rest[len(sub.Nullifiers):]
	for i, c := range sub.Commitments {
		if rest[i].Cmp(new(big.Int).SetBytes(c)) != 0 {
			return false
		}
	}
	rest = rest[len(sub.Commitments):]
	for i, c := range sub.SpentCommitments {
		if rest[i].Cmp(new(big.Int).SetBytes(c)) != 0 {
			return false
		}
	}
	return true
}

// SubmitAction validates and applies a proof-bound state transition. On
// success the action is persisted as pending and its ID returned. Any
// failure leaves no state change.
func (r *Router) SubmitAction(sub *Submission, ctx guard.CallContext) (types.HexBytes, error) {
	if !sub.Type.Valid() {
		return nil, fmt.Errorf("invalid action type %d", sub.Type)
	}
	if sub.Amount == nil || sub.Amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount")
	}
	// Every consumed nullifier must name its spent note, or the guards
	// of step 5 would have nothing to run against.
	if len(sub.SpentCommitments) != len(sub.Nullifiers) {
		return nil, fmt.Errorf("%w: %d spent notes declared for %d nullifiers",
			ErrBindingMismatch, len(sub.SpentCommitments), len(sub.Nullifiers))
	}
	cfg := r.pool.Snapshot()
	version := sub.PoolVersion
	if version == 0 {
		version = cfg.DefaultVersion
	}
	st, err := r.stateOf(version)
	if err != nil {
		return nil, err
	}

	// 1. Optimistic root check. Racing submissions are settled
	// authoritatively inside ApplyTransition; this early check fails
	// fast without paying for proof verification.
	current, err := st.Root()
	if err != nil {
		return nil, err
	}
	if !current.Equal(sub.OldRoot) {
		return nil, fmt.Errorf("%w: have %s, got %s", state.ErrStaleRoot, current, sub.OldRoot)
	}

	// 2. Proof verification (synchronous, side-effect free).
	ok, err := r.verifier.Verify(sub.Proof, sub.PublicInputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if !ok {
		return nil, ErrInvalidProof
	}

	// 3. Nullifier replay pre-check; staged consumption happens
	// atomically in ApplyTransition.
	for _, n := range sub.Nullifiers {
		used, err := st.IsNullifierUsed(n)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, fmt.Errorf("%w: %x", state.ErrNullifierReused, n)
		}
	}

	// 4. Action-hash binding, cross-checked against the public inputs.
	// Execution parameters will be validated against this hash, never
	// against free-form caller values.
	actionHash := binding.Bind(sub.Type, sub.Asset, sub.Amount, sub.Recipient)
	if !publicInputsMatch(sub, actionHash) {
		return nil, fmt.Errorf("%w: declared parameters disagree with public inputs", ErrBindingMismatch)
	}

	// Redeem-only pools accept nullifier-consuming redemptions but no
	// new commitments.
	if version == types.PoolVersionV2 && cfg.V2RedeemOnly && len(sub.Commitments) > 0 {
		return nil, fmt.Errorf("%w: no new commitments in %s", ErrDepositsClosed, version)
	}

	// 5. Mix-window and strict-mode guards over the spent notes.
	now := time.Now()
	for _, spent := range sub.SpentCommitments {
		note, err := st.Note(spent)
		if err != nil {
			return nil, err
		}
		if err := guard.CheckSpendable(note, cfg.MinNoteAge, now); err != nil {
			return nil, err
		}
		if err := guard.CheckStrict(&cfg, note, sub.Recipient, ctx); err != nil {
			return nil, err
		}
	}

	// 6. Atomic transition: consume nullifiers, append commitments,
	// advance the root and persist the pending action, all in one write
	// transaction. A failed action write discards the transition too.
	action := &types.Action{
		Type:        sub.Type,
		ActionHash:  actionHash,
		Asset:       sub.Asset,
		Amount:      (*types.BigInt)(new(big.Int).Set(sub.Amount)),
		Recipient:   sub.Recipient,
		PoolVersion: version,
		Nullifiers:  sub.Nullifiers,
		Commitments: sub.Commitments,
		Status:      types.ActionPending,
		SubmittedAt: now,
		SubmitSeq:   ctx.Seq,
	}
	var id types.HexBytes
	if err := st.ApplyTransition(sub.OldRoot, sub.NewRoot, sub.Nullifiers, sub.Commitments,
		func(wTx db.WriteTx) error {
			var err error
			id, err = r.stg.StageNewAction(wTx, action)
			return err
		}); err != nil {
		return nil, err
	}
	log.Infow("action submitted",
		"id", id.String(),
		"type", sub.Type.String(),
		"pool", version.String(),
		"newRoot", sub.NewRoot.String())
	return id, nil
}

// ExecuteAction re-checks the action binding and dispatches the action to
// its target executor. Retryable executor failures leave the action
// pending; terminal ones mark it failed. A second execution of a settled
// action fails with ErrAlreadyExecuted without re-invoking the executor.
func (r *Router) ExecuteAction(ctx context.Context, id types.HexBytes, params types.ExecutionParams, callCtx guard.CallContext) (*types.Outcome, error) {
	r.execMu.Lock()
	defer r.execMu.Unlock()

	action, err := r.stg.Action(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %x", ErrUnknownAction, id)
	}
	if action.Status != types.ActionPending {
		return nil, fmt.Errorf("%w: status %s", ErrAlreadyExecuted, action.Status)
	}

	var amount *big.Int
	if params.Amount != nil {
		amount = params.Amount.MathBigInt()
	}
	if !binding.Verify(action.ActionHash, params.Type, params.Asset, amount, params.Recipient) {
		return nil, fmt.Errorf("%w: execution parameters do not match bound action", ErrBindingMismatch)
	}

	cfg := r.pool.Snapshot()
	if err := guard.CheckStrictExecute(&cfg, action, callCtx); err != nil {
		return nil, err
	}

	exec, err := r.executors.forType(action.Type)
	if err != nil {
		return nil, err
	}
	// Payout parameters come from the bound action, never from
	// execution params.
	outcome, err := exec.Apply(ctx, action)
	if err != nil {
		if errors.Is(err, ErrTerminal) {
			if merr := r.stg.MarkActionDone(action.ID, action, types.ActionFailed, time.Now()); merr != nil {
				return nil, fmt.Errorf("mark action failed: %w", merr)
			}
			log.Warnw("action failed terminally",
				"id", action.ID.String(), "type", action.Type.String(), "error", err.Error())
			return nil, fmt.Errorf("%w: %v", ErrExecutorFailure, err)
		}
		if rerr := r.stg.ReleaseAction(action.ID); rerr != nil {
			log.Warnw("failed to release action reservation",
				"id", action.ID.String(), "error", rerr.Error())
		}
		return nil, fmt.Errorf("%w (retryable): %v", ErrExecutorFailure, err)
	}
	if err := r.stg.MarkActionDone(action.ID, action, types.ActionExecuted, time.Now()); err != nil {
		return nil, fmt.Errorf("mark action executed: %w", err)
	}
	log.Infow("action executed",
		"id", action.ID.String(), "type", action.Type.String())
	if outcome == nil {
		outcome = &types.Outcome{}
	}
	outcome.ActionID = action.ID
	return outcome, nil
}

// Close closes the per-version shielded states.
func (r *Router) Close() {
	for _, st := range r.states {
		if err := st.Close(); err != nil {
			log.Warnw("closing state", "error", err.Error())
		}
	}
}
