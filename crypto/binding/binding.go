// Package binding derives the immutable action hash that ties an action's
// type, asset, amount and recipient together between submission and
// execution. The hash is domain-separated per action type, so the same
// tuple under a different action type yields a different hash.
package binding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/shieldswap/zkrouter/crypto"
	"github.com/shieldswap/zkrouter/types"
)

// bn254ScalarField is the field the action hash is reduced into, so it can
// travel as a proof public input without further mangling.
var bn254ScalarField, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// domainTag returns the per-action-type domain separation tag.
func domainTag(t types.ActionType) []byte {
	return ethcrypto.Keccak256([]byte("zkrouter.action." + t.String()))
}

// Bind computes the action hash for (t, asset, amount, recipient). It is
// deterministic and collision-resistant; the result is a 32-byte
// big-endian field element.
func Bind(t types.ActionType, asset common.Address, amount *big.Int, recipient common.Address) types.HexBytes {
	amount32 := make([]byte, 32)
	if amount != nil {
		amount.FillBytes(amount32)
	}
	digest := ethcrypto.Keccak256(
		domainTag(t),
		asset.Bytes(),
		amount32,
		recipient.Bytes(),
	)
	return crypto.BigIntToMIMCHash(new(big.Int).SetBytes(digest), bn254ScalarField)
}

// Verify re-derives the action hash from the given parameters and compares
// it with the bound value. Used at execute time to reject tampering.
func Verify(bound types.HexBytes, t types.ActionType, asset common.Address, amount *big.Int, recipient common.Address) bool {
	return bound.Equal(Bind(t, asset, amount, recipient))
}

// AsBigInt returns the action hash as a field element, the form it takes
// inside the proof's public inputs.
func AsBigInt(hash types.HexBytes) *big.Int {
	return new(big.Int).SetBytes(hash)
}
