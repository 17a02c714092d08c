package api

import (
	"net/http"
)

// poolRoot returns the current commitment registry root of a pool
// GET /pools/{poolVersion}/root
func (a *API) poolRoot(w http.ResponseWriter, r *http.Request) {
	version, err := urlPoolVersion(r)
	if err != nil {
		ErrMalformedPoolVersion.WithErr(err).Write(w)
		return
	}
	root, err := a.zk.RootOf(version)
	if err != nil {
		writeRouterError(w, err)
		return
	}
	httpWriteJSON(w, &RootResponse{PoolVersion: version.String(), Root: root})
}

// nullifierStatus reports whether a nullifier has been consumed
// GET /pools/{poolVersion}/nullifiers/{nullifier}
func (a *API) nullifierStatus(w http.ResponseWriter, r *http.Request) {
	version, err := urlPoolVersion(r)
	if err != nil {
		ErrMalformedPoolVersion.WithErr(err).Write(w)
		return
	}
	nullifier, err := urlHexBytes(r, NullifierURLParam)
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	used, err := a.zk.IsNullifierUsed(version, nullifier)
	if err != nil {
		writeRouterError(w, err)
		return
	}
	httpWriteJSON(w, &NullifierResponse{Nullifier: nullifier, Used: used})
}

// commitmentProof returns a merkle proof for a commitment against the
// current root
// GET /pools/{poolVersion}/commitments/{commitment}/proof
func (a *API) commitmentProof(w http.ResponseWriter, r *http.Request) {
	version, err := urlPoolVersion(r)
	if err != nil {
		ErrMalformedPoolVersion.WithErr(err).Write(w)
		return
	}
	commitment, err := urlHexBytes(r, CommitmentURLParam)
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	proof, err := a.zk.CommitmentProof(version, commitment)
	if err != nil {
		writeRouterError(w, err)
		return
	}
	httpWriteJSON(w, proof)
}
