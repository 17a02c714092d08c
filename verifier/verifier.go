// Package verifier abstracts the succinct-proof verification consumed by
// the router. The proof system's circuit is out of scope; the router only
// needs the verify(proof, publicInputs) capability, injected as an
// interface so the core is testable against a fake verifier.
package verifier

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
)

// ProofVerifier verifies an opaque proof against its public inputs.
type ProofVerifier interface {
	Verify(proof []byte, publicInputs []*big.Int) (bool, error)
}

// Groth16Verifier verifies gnark groth16 proofs against a fixed
// verifying key.
type Groth16Verifier struct {
	curve ecc.ID
	vk    groth16.VerifyingKey
}

// NewGroth16Verifier parses the serialized verifying key for the given
// curve and returns a verifier bound to it.
func NewGroth16Verifier(curve ecc.ID, vkBytes []byte) (*Groth16Verifier, error) {
	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, fmt.Errorf("read verifying key: %w", err)
	}
	return &Groth16Verifier{curve: curve, vk: vk}, nil
}

// Verify deserializes the proof, builds a public-only witness from the
// inputs and runs the groth16 verification. A failed verification returns
// (false, nil); errors are reserved for malformed inputs.
func (v *Groth16Verifier) Verify(proofBytes []byte, publicInputs []*big.Int) (bool, error) {
	proof := groth16.NewProof(v.curve)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("read proof: %w", err)
	}
	w, err := witness.New(v.curve.ScalarField())
	if err != nil {
		return false, fmt.Errorf("new witness: %w", err)
	}
	values := make(chan any, len(publicInputs))
	for _, pi := range publicInputs {
		values <- pi
	}
	close(values)
	if err := w.Fill(len(publicInputs), 0, values); err != nil {
		return false, fmt.Errorf("fill public witness: %w", err)
	}
	if err := groth16.Verify(proof, v.vk, w); err != nil {
		return false, nil
	}
	return true, nil
}
