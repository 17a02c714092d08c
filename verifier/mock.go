package verifier

import (
	"math/big"
	"sync/atomic"
)

// StaticVerifier is a ProofVerifier returning a fixed result, for tests
// and local development. It counts calls so tests can assert the verifier
// was (or was not) reached.
type StaticVerifier struct {
	Result bool
	Err    error
	calls  atomic.Int64
}

// Verify implements ProofVerifier.
func (v *StaticVerifier) Verify([]byte, []*big.Int) (bool, error) {
	v.calls.Add(1)
	return v.Result, v.Err
}

// Calls returns how many times Verify has been invoked.
func (v *StaticVerifier) Calls() int64 { return v.calls.Load() }
