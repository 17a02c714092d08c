package api

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldswap/zkrouter/types"
)

// Deposit is the request body for creating a shielded note.
type Deposit struct {
	PoolVersion     string         `json:"poolVersion,omitempty"`
	Denomination    *types.BigInt  `json:"denomination"`
	LockedRecipient common.Address `json:"lockedRecipient"`
	Depositor       common.Address `json:"depositor"`
}

// DepositResponse returns the created note. The commitment identifies it;
// the secret parts never leave the server response.
type DepositResponse struct {
	Note *types.Note    `json:"note"`
	Root types.HexBytes `json:"root"`
}

// ActionSubmission is the request body for submitting a proof-bound
// action. Roots, nullifiers and commitments must match the proof's public
// inputs.
type ActionSubmission struct {
	Type             string           `json:"type"`
	PoolVersion      string           `json:"poolVersion,omitempty"`
	OldRoot          types.HexBytes   `json:"oldRoot"`
	NewRoot          types.HexBytes   `json:"newRoot"`
	Nullifiers       []types.HexBytes `json:"nullifiers"`
	Commitments      []types.HexBytes `json:"commitments"`
	SpentCommitments []types.HexBytes `json:"spentCommitments"`
	Asset            common.Address   `json:"asset"`
	Amount           *types.BigInt    `json:"amount"`
	Recipient        common.Address   `json:"recipient"`
	PublicInputs     []*types.BigInt  `json:"publicInputs"`
	Proof            types.HexBytes   `json:"proof"`
}

// ActionSubmissionResponse is the response to an accepted submission.
type ActionSubmissionResponse struct {
	ActionID types.HexBytes `json:"actionId"`
	NewRoot  types.HexBytes `json:"newRoot"`
}

// ExecuteRequest is the request body for executing a pending action. The
// parameters are re-checked against the bound action hash, never used for
// the payout itself.
type ExecuteRequest struct {
	Type      string         `json:"type"`
	Asset     common.Address `json:"asset"`
	Amount    *types.BigInt  `json:"amount"`
	Recipient common.Address `json:"recipient"`
}

// RootResponse is the response to a registry root request.
type RootResponse struct {
	PoolVersion string         `json:"poolVersion"`
	Root        types.HexBytes `json:"root"`
}

// NullifierResponse reports whether a nullifier has been consumed.
type NullifierResponse struct {
	Nullifier types.HexBytes `json:"nullifier"`
	Used      bool           `json:"used"`
}

// ConfigUpdate is the admin request body for mutating the pool
// configuration. Nil fields are left untouched.
type ConfigUpdate struct {
	DefaultVersion *string        `json:"defaultVersion,omitempty"`
	V2RedeemOnly   *bool          `json:"v2RedeemOnly,omitempty"`
	MinNoteAge     *time.Duration `json:"minNoteAge,omitempty"`
	StrictMode     *bool          `json:"strictMode,omitempty"`
}
