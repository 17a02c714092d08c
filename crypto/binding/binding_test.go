package binding

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shieldswap/zkrouter/types"
)

var (
	testAsset     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testRecipient = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestBindDeterministic(t *testing.T) {
	t.Parallel()
	h1 := Bind(types.ActionSwap, testAsset, big.NewInt(100), testRecipient)
	h2 := Bind(types.ActionSwap, testAsset, big.NewInt(100), testRecipient)
	qt.Assert(t, h1, qt.DeepEquals, h2)
	qt.Assert(t, len(h1), qt.Equals, 32)
}

func TestBindDomainSeparation(t *testing.T) {
	t.Parallel()
	seen := map[string]types.ActionType{}
	for _, at := range []types.ActionType{
		types.ActionSwap, types.ActionBridge, types.ActionStake,
		types.ActionLimitOrder, types.ActionReferral, types.ActionRewards,
		types.ActionPoints, types.ActionSnapshot, types.ActionPrivateSwap,
		types.ActionPrivateBTCSwap,
	} {
		h := Bind(at, testAsset, big.NewInt(100), testRecipient)
		prev, dup := seen[h.String()]
		qt.Assert(t, dup, qt.IsFalse,
			qt.Commentf("same hash for %s and %s", at, prev))
		seen[h.String()] = at
	}
}

func TestBindParameterSensitivity(t *testing.T) {
	t.Parallel()
	base := Bind(types.ActionSwap, testAsset, big.NewInt(100), testRecipient)

	otherAmount := Bind(types.ActionSwap, testAsset, big.NewInt(101), testRecipient)
	qt.Assert(t, base.Equal(otherAmount), qt.IsFalse)

	otherRecipient := Bind(types.ActionSwap, testAsset, big.NewInt(100),
		common.HexToAddress("0x00000000000000000000000000000000000000cc"))
	qt.Assert(t, base.Equal(otherRecipient), qt.IsFalse)

	otherAsset := Bind(types.ActionSwap,
		common.HexToAddress("0x00000000000000000000000000000000000000dd"),
		big.NewInt(100), testRecipient)
	qt.Assert(t, base.Equal(otherAsset), qt.IsFalse)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	h := Bind(types.ActionStake, testAsset, big.NewInt(42), testRecipient)
	qt.Assert(t, Verify(h, types.ActionStake, testAsset, big.NewInt(42), testRecipient), qt.IsTrue)
	qt.Assert(t, Verify(h, types.ActionStake, testAsset, big.NewInt(43), testRecipient), qt.IsFalse)
	qt.Assert(t, Verify(h, types.ActionSwap, testAsset, big.NewInt(42), testRecipient), qt.IsFalse)
}
