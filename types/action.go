package types

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// PoolVersion identifies a generation of the shielded pool. v2 is kept in
// redeem-only mode for legacy notes, v3 is the active deposit target.
type PoolVersion uint8

const (
	PoolVersionV2 PoolVersion = 2
	PoolVersionV3 PoolVersion = 3
)

// Valid reports whether v is a known pool version.
func (v PoolVersion) Valid() bool {
	return v == PoolVersionV2 || v == PoolVersionV3
}

func (v PoolVersion) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// ParsePoolVersion parses "v2"/"v3" (or bare "2"/"3") into a PoolVersion.
func ParsePoolVersion(s string) (PoolVersion, error) {
	switch s {
	case "v2", "2":
		return PoolVersionV2, nil
	case "v3", "3":
		return PoolVersionV3, nil
	}
	return 0, fmt.Errorf("unknown pool version %q", s)
}

// ActionType is the closed set of downstream actions the router can
// dispatch. Adding a new type requires extending the dispatcher's switch,
// which keeps dispatch a compile-time-checked change.
type ActionType uint8

const (
	ActionSwap ActionType = iota + 1
	ActionBridge
	ActionStake
	ActionLimitOrder
	ActionReferral
	ActionRewards
	ActionPoints
	ActionSnapshot
	ActionPrivateSwap
	ActionPrivateBTCSwap
)

var actionTypeNames = map[ActionType]string{
	ActionSwap:           "swap",
	ActionBridge:         "bridge",
	ActionStake:          "stake",
	ActionLimitOrder:     "limit",
	ActionReferral:       "referral",
	ActionRewards:        "rewards",
	ActionPoints:         "points",
	ActionSnapshot:       "snapshot",
	ActionPrivateSwap:    "private-swap",
	ActionPrivateBTCSwap: "private-btc-swap",
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	_, ok := actionTypeNames[t]
	return ok
}

func (t ActionType) String() string {
	if name, ok := actionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseActionType parses the string representation of an action type.
func ParseActionType(s string) (ActionType, error) {
	for t, name := range actionTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown action type %q", s)
}

// ActionStatus is the lifecycle state of an action. Pending is the only
// non-terminal state.
type ActionStatus uint8

const (
	ActionPending ActionStatus = iota
	ActionExecuted
	ActionFailed
)

func (s ActionStatus) String() string {
	switch s {
	case ActionPending:
		return "pending"
	case ActionExecuted:
		return "executed"
	case ActionFailed:
		return "failed"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// Note is a record of shielded value, identified by its commitment.
// Immutable once created; spending nullifies it but never deletes it.
type Note struct {
	Commitment      HexBytes       `json:"commitment"      cbor:"0,keyasint"`
	PoolVersion     PoolVersion    `json:"poolVersion"     cbor:"1,keyasint"`
	CreatedAt       time.Time      `json:"createdAt"       cbor:"2,keyasint"`
	Denomination    *BigInt        `json:"denomination"    cbor:"3,keyasint"`
	LockedRecipient common.Address `json:"lockedRecipient" cbor:"4,keyasint"`
	Depositor       common.Address `json:"depositor"       cbor:"5,keyasint"`
	// DepositSeq is the caller sequence the deposit arrived on, used by
	// the strict-mode guard to detect coalesced call sequences.
	DepositSeq uuid.UUID `json:"-" cbor:"6,keyasint"`
}

// PoolConfig is the global, admin-mutated router configuration. Every
// submission reads a single consistent snapshot of it.
type PoolConfig struct {
	DefaultVersion PoolVersion   `json:"defaultVersion" cbor:"0,keyasint"`
	V2RedeemOnly   bool          `json:"v2RedeemOnly"   cbor:"1,keyasint"`
	MinNoteAge     time.Duration `json:"minNoteAge"     cbor:"2,keyasint"`
	StrictMode     bool          `json:"strictMode"     cbor:"3,keyasint"`
}

// Action is a proof-bound state transition accepted by the router,
// waiting for (or done with) downstream execution.
type Action struct {
	ID          HexBytes       `json:"id"          cbor:"0,keyasint"`
	Type        ActionType     `json:"type"        cbor:"1,keyasint"`
	ActionHash  HexBytes       `json:"actionHash"  cbor:"2,keyasint"`
	Asset       common.Address `json:"asset"       cbor:"3,keyasint"`
	Amount      *BigInt        `json:"amount"      cbor:"4,keyasint"`
	Recipient   common.Address `json:"recipient"   cbor:"5,keyasint"`
	PoolVersion PoolVersion    `json:"poolVersion" cbor:"6,keyasint"`
	Nullifiers  []HexBytes     `json:"nullifiers"  cbor:"7,keyasint"`
	Commitments []HexBytes     `json:"commitments" cbor:"8,keyasint"`
	Status      ActionStatus   `json:"status"      cbor:"9,keyasint"`
	SubmittedAt time.Time      `json:"submittedAt" cbor:"10,keyasint"`
	ExecutedAt  time.Time      `json:"executedAt,omitempty" cbor:"11,keyasint,omitempty"`
	SubmitSeq   uuid.UUID      `json:"-" cbor:"12,keyasint"`
}

// ExecutionParams are the caller-supplied parameters of execute_action.
// They are only ever used to re-check the action-hash binding; payouts
// always read asset, amount and recipient from the bound Action.
type ExecutionParams struct {
	Type      ActionType     `json:"type"`
	Asset     common.Address `json:"asset"`
	Amount    *BigInt        `json:"amount"`
	Recipient common.Address `json:"recipient"`
}

// Outcome is what a target executor reports back on success.
type Outcome struct {
	ActionID HexBytes `json:"actionId"`
	Ref      HexBytes `json:"ref,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}
