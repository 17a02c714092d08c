package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldswap/zkrouter/guard"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/types"
)

// newDeposit creates a shielded note for the caller
// POST /deposits
func (a *API) newDeposit(w http.ResponseWriter, r *http.Request) {
	req := &Deposit{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	var version types.PoolVersion
	if req.PoolVersion != "" {
		var err error
		if version, err = types.ParsePoolVersion(req.PoolVersion); err != nil {
			ErrMalformedPoolVersion.WithErr(err).Write(w)
			return
		}
	}
	if req.Denomination == nil {
		ErrMalformedBody.With("missing denomination").Write(w)
		return
	}
	caller, err := callerAddress(r)
	if err != nil {
		ErrMalformedCallerHeader.WithErr(err).Write(w)
		return
	}
	if caller == (common.Address{}) {
		caller = req.Depositor
	}

	note, err := a.zk.Deposit(router.DepositRequest{
		PoolVersion:     version,
		Denomination:    req.Denomination.MathBigInt(),
		LockedRecipient: req.LockedRecipient,
		Depositor:       req.Depositor,
	}, guard.NewCallContext(caller))
	if err != nil {
		writeRouterError(w, err)
		return
	}
	root, err := a.zk.RootOf(note.PoolVersion)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	log.Infow("deposit created", "commitment", note.Commitment.String(), "pool", note.PoolVersion.String())
	httpWriteJSON(w, &DepositResponse{Note: note, Root: root})
}
