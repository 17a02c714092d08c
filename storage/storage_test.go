package storage

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shieldswap/zkrouter/types"
	"github.com/shieldswap/zkrouter/util"
	"go.vocdoni.io/dvote/db/metadb"
)

func newTestAction() *types.Action {
	return &types.Action{
		Type:        types.ActionSwap,
		ActionHash:  util.RandomBytes(32),
		Asset:       common.BytesToAddress(util.RandomBytes(20)),
		Amount:      (*types.BigInt)(big.NewInt(100)),
		Recipient:   common.BytesToAddress(util.RandomBytes(20)),
		PoolVersion: types.PoolVersionV3,
		Nullifiers:  []types.HexBytes{util.RandomBytes(32)},
		Commitments: []types.HexBytes{util.RandomBytes(32)},
		Status:      types.ActionPending,
		SubmittedAt: time.Now(),
	}
}

func TestActionRoundTrip(t *testing.T) {
	t.Parallel()
	stg := New(metadb.NewTest(t))

	a := newTestAction()
	id, err := stg.PutNewAction(a)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, len(id), qt.Equals, types.ActionIDSize)

	got, err := stg.Action(id)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Type, qt.Equals, types.ActionSwap)
	qt.Assert(t, got.ActionHash, qt.DeepEquals, a.ActionHash)
	qt.Assert(t, got.Amount.String(), qt.Equals, "100")
	qt.Assert(t, got.Status, qt.Equals, types.ActionPending)
}

func TestActionNotFound(t *testing.T) {
	t.Parallel()
	stg := New(metadb.NewTest(t))
	_, err := stg.Action(util.RandomBytes(types.ActionIDSize))
	qt.Assert(t, err, qt.ErrorIs, ErrNotFound)
}

func TestPendingActionQueue(t *testing.T) {
	t.Parallel()
	stg := New(metadb.NewTest(t))

	a := newTestAction()
	id, err := stg.PutNewAction(a)
	qt.Assert(t, err, qt.IsNil)

	next, key, err := stg.NextPendingAction()
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, next.ID, qt.DeepEquals, id)

	// While reserved, the queue has no more elements.
	_, _, err = stg.NextPendingAction()
	qt.Assert(t, err, qt.ErrorIs, ErrNoMoreElements)

	// Releasing makes it available again.
	qt.Assert(t, stg.ReleaseAction(key), qt.IsNil)
	next, key, err = stg.NextPendingAction()
	qt.Assert(t, err, qt.IsNil)

	// Settling with a terminal status removes it from the queue forever.
	err = stg.MarkActionDone(key, next, types.ActionExecuted, time.Now())
	qt.Assert(t, err, qt.IsNil)
	_, _, err = stg.NextPendingAction()
	qt.Assert(t, err, qt.ErrorIs, ErrNoMoreElements)

	got, err := stg.Action(id)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Status, qt.Equals, types.ActionExecuted)
	qt.Assert(t, got.ExecutedAt.IsZero(), qt.IsFalse)
}

func TestPoolConfigRoundTrip(t *testing.T) {
	t.Parallel()
	stg := New(metadb.NewTest(t))

	cfg, err := stg.PoolConfig()
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, cfg.DefaultVersion, qt.Equals, types.PoolVersionV3)
	qt.Assert(t, cfg.V2RedeemOnly, qt.IsTrue)

	cfg.MinNoteAge = 2 * time.Hour
	cfg.StrictMode = true
	qt.Assert(t, stg.SetPoolConfig(cfg), qt.IsNil)

	got, err := stg.PoolConfig()
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.MinNoteAge, qt.Equals, 2*time.Hour)
	qt.Assert(t, got.StrictMode, qt.IsTrue)
}
