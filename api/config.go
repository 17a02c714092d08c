package api

import (
	"encoding/json"
	"net/http"

	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/types"
)

// poolConfig returns the current pool configuration
// GET /config
func (a *API) poolConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := a.pool.Snapshot()
	httpWriteJSON(w, &cfg)
}

// updatePoolConfig applies an admin configuration update. Only the fields
// present in the body are mutated; each mutation is admin-gated and
// applied in order.
// PUT /config
func (a *API) updatePoolConfig(w http.ResponseWriter, r *http.Request) {
	req := &ConfigUpdate{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	caller, err := callerAddress(r)
	if err != nil {
		ErrMalformedCallerHeader.WithErr(err).Write(w)
		return
	}
	if caller != a.admin {
		ErrUnauthorized.Withf("%s", caller.Hex()).Write(w)
		return
	}

	if req.DefaultVersion != nil {
		version, err := types.ParsePoolVersion(*req.DefaultVersion)
		if err != nil {
			ErrMalformedPoolVersion.WithErr(err).Write(w)
			return
		}
		if err := a.pool.SetDefaultVersion(caller, version); err != nil {
			writeRouterError(w, err)
			return
		}
	}
	if req.V2RedeemOnly != nil {
		if err := a.pool.SetV2RedeemOnly(caller, *req.V2RedeemOnly); err != nil {
			writeRouterError(w, err)
			return
		}
	}
	if req.MinNoteAge != nil {
		if err := a.pool.SetMinNoteAge(caller, *req.MinNoteAge); err != nil {
			writeRouterError(w, err)
			return
		}
	}
	if req.StrictMode != nil {
		if err := a.pool.SetStrictMode(caller, *req.StrictMode); err != nil {
			writeRouterError(w, err)
			return
		}
	}
	cfg := a.pool.Snapshot()
	log.Infow("pool configuration updated", "admin", caller.Hex())
	httpWriteJSON(w, &cfg)
}
