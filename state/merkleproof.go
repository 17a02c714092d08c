package state

import (
	"fmt"

	"github.com/shieldswap/zkrouter/types"
	"github.com/vocdoni/arbo"
)

// CommitmentProof is a merkle inclusion (or non-inclusion) proof for a
// commitment against a pool root. Relayers fetch these to build the
// witness of their next proof.
type CommitmentProof struct {
	Root      types.HexBytes   `json:"root"`
	Key       types.HexBytes   `json:"key"`
	Value     types.HexBytes   `json:"value"`
	Siblings  []types.HexBytes `json:"siblings"`
	Existence bool             `json:"existence"`
	// PackedSiblings is the arbo-native packed form, usable directly
	// with arbo.CheckProof.
	PackedSiblings types.HexBytes `json:"packedSiblings"`
}

// GenCommitmentProof generates a merkle proof for the given commitment
// against the current root.
func (s *State) GenCommitmentProof(commitment types.HexBytes) (*CommitmentProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.tree.Root()
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}
	leafK, leafV, packedSiblings, existence, err := s.tree.GenProof(treeKey(commitment))
	if err != nil {
		return nil, fmt.Errorf("generate proof: %w", err)
	}
	unpacked, err := arbo.UnpackSiblings(hashFunc, packedSiblings)
	if err != nil {
		return nil, fmt.Errorf("unpack siblings: %w", err)
	}
	siblings := make([]types.HexBytes, len(unpacked))
	for i, sib := range unpacked {
		siblings[i] = sib
	}
	return &CommitmentProof{
		Root:           root,
		Key:            leafK,
		Value:          leafV,
		Siblings:       siblings,
		Existence:      existence,
		PackedSiblings: packedSiblings,
	}, nil
}

// CheckCommitmentProof verifies an inclusion proof against its root.
func CheckCommitmentProof(p *CommitmentProof) (bool, error) {
	return arbo.CheckProof(hashFunc, p.Key, p.Value, p.Root, p.PackedSiblings)
}
