package state

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/shieldswap/zkrouter/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// nullifierRecord is the value stored in the nullifier ledger. Membership
// is permanent; records are never deleted.
type nullifierRecord struct {
	ConsumedAt time.Time `cbor:"0,keyasint"`
}

// IsNullifierUsed reports whether the nullifier has already been consumed.
func (s *State) IsNullifierUsed(nullifier types.HexBytes) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNullifierUsed(nullifier)
}

// NullifierConsumedAt returns when the nullifier was consumed, or
// a zero time if it has not been.
func (s *State) NullifierConsumedAt(nullifier types.HexBytes) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rd := prefixeddb.NewPrefixedReader(s.db, nullifierPrefix)
	data, err := rd.Get(nullifier)
	if err != nil {
		return time.Time{}, nil
	}
	var rec nullifierRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return time.Time{}, fmt.Errorf("decode nullifier record: %w", err)
	}
	return rec.ConsumedAt, nil
}

func (s *State) isNullifierUsed(nullifier types.HexBytes) (bool, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, nullifierPrefix)
	if _, err := rd.Get(nullifier); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *State) consumeNullifier(wTx db.WriteTx, nullifier types.HexBytes, at time.Time) error {
	data, err := cbor.Marshal(nullifierRecord{ConsumedAt: at})
	if err != nil {
		return fmt.Errorf("encode nullifier record: %w", err)
	}
	nTx := prefixeddb.NewPrefixedWriteTx(wTx, nullifierPrefix)
	if err := nTx.Set(nullifier, data); err != nil {
		return fmt.Errorf("consume nullifier: %w", err)
	}
	return nil
}
