package guard

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/shieldswap/zkrouter/types"
)

var (
	depositor = common.HexToAddress("0x0000000000000000000000000000000000000001")
	recipient = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func TestCheckSpendableBoundary(t *testing.T) {
	t.Parallel()
	created := time.Unix(1_700_000_000, 0)
	note := &types.Note{CreatedAt: created, Depositor: depositor}
	minAge := 3600 * time.Second

	// One second early: rejected.
	err := CheckSpendable(note, minAge, created.Add(3599*time.Second))
	qt.Assert(t, err, qt.ErrorIs, ErrMixWindow)

	// Exactly at the boundary: accepted.
	err = CheckSpendable(note, minAge, created.Add(3600*time.Second))
	qt.Assert(t, err, qt.IsNil)

	// After the boundary: accepted.
	err = CheckSpendable(note, minAge, created.Add(2*time.Hour))
	qt.Assert(t, err, qt.IsNil)
}

func TestCheckStrictSelfPayout(t *testing.T) {
	t.Parallel()
	note := &types.Note{Depositor: depositor}
	cfg := &types.PoolConfig{StrictMode: true}

	err := CheckStrict(cfg, note, depositor, NewCallContext(depositor))
	qt.Assert(t, err, qt.ErrorIs, ErrStrictMode)

	err = CheckStrict(cfg, note, recipient, NewCallContext(depositor))
	qt.Assert(t, err, qt.IsNil)

	// Disabled strict mode allows self-payout.
	err = CheckStrict(&types.PoolConfig{}, note, depositor, NewCallContext(depositor))
	qt.Assert(t, err, qt.IsNil)
}

func TestCheckStrictCoalescedSequence(t *testing.T) {
	t.Parallel()
	cfg := &types.PoolConfig{StrictMode: true}
	seq := uuid.New()
	note := &types.Note{Depositor: depositor, DepositSeq: seq}

	// Deposit and submission on the same sequence: rejected.
	err := CheckStrict(cfg, note, recipient, CallContext{Caller: depositor, Seq: seq})
	qt.Assert(t, err, qt.ErrorIs, ErrStrictMode)

	// Distinct sequences: accepted.
	err = CheckStrict(cfg, note, recipient, NewCallContext(depositor))
	qt.Assert(t, err, qt.IsNil)
}

func TestCheckStrictExecute(t *testing.T) {
	t.Parallel()
	cfg := &types.PoolConfig{StrictMode: true}
	seq := uuid.New()
	action := &types.Action{SubmitSeq: seq}

	err := CheckStrictExecute(cfg, action, CallContext{Seq: seq})
	qt.Assert(t, err, qt.ErrorIs, ErrStrictMode)

	err = CheckStrictExecute(cfg, action, NewCallContext(common.Address{}))
	qt.Assert(t, err, qt.IsNil)
}
