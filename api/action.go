package api

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/shieldswap/zkrouter/guard"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/types"
)

// submitAction validates and applies a proof-bound action submission
// POST /actions
func (a *API) submitAction(w http.ResponseWriter, r *http.Request) {
	req := &ActionSubmission{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	actionType, err := types.ParseActionType(req.Type)
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	var version types.PoolVersion
	if req.PoolVersion != "" {
		if version, err = types.ParsePoolVersion(req.PoolVersion); err != nil {
			ErrMalformedPoolVersion.WithErr(err).Write(w)
			return
		}
	}
	caller, err := callerAddress(r)
	if err != nil {
		ErrMalformedCallerHeader.WithErr(err).Write(w)
		return
	}
	var amount *big.Int
	if req.Amount != nil {
		amount = req.Amount.MathBigInt()
	}
	inputs := make([]*big.Int, len(req.PublicInputs))
	for i, in := range req.PublicInputs {
		if in == nil {
			ErrMalformedBody.Withf("null public input at index %d", i).Write(w)
			return
		}
		inputs[i] = in.MathBigInt()
	}

	sub := &router.Submission{
		Type:             actionType,
		PoolVersion:      version,
		OldRoot:          req.OldRoot,
		NewRoot:          req.NewRoot,
		Nullifiers:       req.Nullifiers,
		Commitments:      req.Commitments,
		SpentCommitments: req.SpentCommitments,
		Asset:            req.Asset,
		Amount:           amount,
		Recipient:        req.Recipient,
		PublicInputs:     inputs,
		Proof:            req.Proof,
	}
	id, err := a.zk.SubmitAction(sub, guard.NewCallContext(caller))
	if err != nil {
		writeRouterError(w, err)
		return
	}
	log.Infow("action accepted", "id", id.String(), "type", req.Type)
	httpWriteJSON(w, &ActionSubmissionResponse{ActionID: id, NewRoot: req.NewRoot})
}

// action returns the stored action with its current status
// GET /actions/{actionId}
func (a *API) action(w http.ResponseWriter, r *http.Request) {
	id, err := urlHexBytes(r, ActionURLParam)
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	action, err := a.zk.Action(id)
	if err != nil {
		ErrActionNotFound.Withf("%x", id).Write(w)
		return
	}
	httpWriteJSON(w, action)
}

// executeAction re-checks the binding and dispatches a pending action to
// its target executor
// POST /actions/{actionId}/execute
func (a *API) executeAction(w http.ResponseWriter, r *http.Request) {
	id, err := urlHexBytes(r, ActionURLParam)
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	req := &ExecuteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	actionType, err := types.ParseActionType(req.Type)
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	caller, err := callerAddress(r)
	if err != nil {
		ErrMalformedCallerHeader.WithErr(err).Write(w)
		return
	}

	outcome, err := a.zk.ExecuteAction(r.Context(), id, types.ExecutionParams{
		Type:      actionType,
		Asset:     req.Asset,
		Amount:    req.Amount,
		Recipient: req.Recipient,
	}, guard.NewCallContext(caller))
	if err != nil {
		writeRouterError(w, err)
		return
	}
	httpWriteJSON(w, outcome)
}
