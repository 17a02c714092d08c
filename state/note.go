package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/shieldswap/zkrouter/crypto"
	"github.com/shieldswap/zkrouter/crypto/hash/poseidon"
	"github.com/shieldswap/zkrouter/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// ComputeCommitment derives the public commitment of a note from the pool
// version, the denomination, the locked recipient and the note's secret
// randomness rho. Rho is reduced into the hash's field, so any 32-byte
// randomness is accepted. The result is a 32-byte big-endian field
// element.
func ComputeCommitment(version types.PoolVersion, denomination *big.Int, recipient common.Address, rho []byte) (types.HexBytes, error) {
	h, err := poseidon.MultiPoseidon(
		big.NewInt(int64(version)),
		denomination,
		new(big.Int).SetBytes(recipient.Bytes()),
		crypto.BigToFF(baseField, new(big.Int).SetBytes(rho)),
	)
	if err != nil {
		return nil, fmt.Errorf("compute commitment: %w", err)
	}
	commitment := make([]byte, types.CommitmentSize)
	h.FillBytes(commitment)
	return commitment, nil
}

// Note returns the note record stored for the given commitment, or
// ErrNoteNotFound.
func (s *State) Note(commitment types.HexBytes) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note(commitment)
}

func (s *State) note(commitment types.HexBytes) (*types.Note, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, notePrefix)
	data, err := rd.Get(commitment)
	if err != nil {
		return nil, fmt.Errorf("%w: %x", ErrNoteNotFound, commitment)
	}
	note := &types.Note{}
	if err := cbor.Unmarshal(data, note); err != nil {
		return nil, fmt.Errorf("decode note: %w", err)
	}
	return note, nil
}

func (s *State) storeNote(wTx db.WriteTx, note *types.Note) error {
	data, err := cbor.Marshal(note)
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}
	nTx := prefixeddb.NewPrefixedWriteTx(wTx, notePrefix)
	if err := nTx.Set(note.Commitment, data); err != nil {
		return fmt.Errorf("store note: %w", err)
	}
	return nil
}
