// Package state implements the per-pool-version shielded state: the
// append-only commitment registry summarized by a merkle root, the note
// records behind each commitment, and the nullifier ledger that marks
// notes as spent.
//
// All mutations go through a single write transaction per operation, so a
// transition is either fully applied or not at all. The root acts as an
// optimistic concurrency token: a transition must present the current
// root and its proposed new root must equal the root the tree computes
// after the insertions.
package state

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/shieldswap/zkrouter/types"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

const (
	// MaxLevels is the number of levels of the commitment tree.
	MaxLevels = types.StateTreeMaxLevels
	// MaxKeyLen is the maximum tree key length in bytes. Commitments are
	// truncated to this length when used as tree keys; the full value is
	// stored as the leaf value.
	MaxKeyLen = types.StateKeyMaxLen
)

// hashFunc is the hash function used in the commitment tree.
var hashFunc = arbo.HashFunctionPoseidon

// baseField is the prime field the tree's poseidon hash operates in.
// Every key and leaf value must be a member.
var baseField = constants.Q

var (
	// ErrStaleRoot is returned when a transition presents an old root
	// that is no longer the current root of the pool.
	ErrStaleRoot = errors.New("stale root for pool version")
	// ErrRootMismatch is returned when the proposed new root does not
	// match the root computed after applying the transition.
	ErrRootMismatch = errors.New("proposed new root does not match computed root")
	// ErrNullifierReused is returned when a transition tries to consume
	// an already-consumed nullifier.
	ErrNullifierReused = errors.New("nullifier already consumed")
	// ErrNoteNotFound is returned when no note exists for a commitment.
	ErrNoteNotFound = errors.New("note not found")
	// ErrNoteExists is returned when a deposit repeats a commitment.
	ErrNoteExists = errors.New("commitment already registered")
	// ErrNotInField is returned when a commitment is not a valid field
	// element and therefore can never appear in a proof public input.
	ErrNotInField = errors.New("value is not a field element")
)

var (
	treePrefix      = []byte("t/")
	notePrefix      = []byte("n/")
	nullifierPrefix = []byte("s/")
)

// State is the shielded state of a single pool version.
type State struct {
	mu      sync.Mutex
	version types.PoolVersion
	base    db.Database
	prefix  []byte
	db      db.Database
	tree    *arbo.Tree
}

// New opens (or creates) the state of the given pool version inside the
// passed database. Each version lives under its own prefix, so several
// versions can share one database.
func New(database db.Database, version types.PoolVersion) (*State, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("invalid pool version %d", version)
	}
	prefix := []byte("pool/" + version.String())
	pdb := prefixeddb.NewPrefixedDatabase(database, prefix)
	tree, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(pdb, treePrefix),
		MaxLevels:    MaxLevels,
		HashFunction: hashFunc,
	})
	if err != nil {
		return nil, fmt.Errorf("create commitment tree: %w", err)
	}
	return &State{
		version: version,
		base:    database,
		prefix:  prefix,
		db:      pdb,
		tree:    tree,
	}, nil
}

// Version returns the pool version this state belongs to.
func (s *State) Version() types.PoolVersion { return s.version }

// Close releases the state. The underlying database is shared between
// pool versions and stays open; its owner closes it.
func (s *State) Close() error { return nil }

// Root returns the current root of the commitment tree.
func (s *State) Root() (types.HexBytes, error) {
	root, err := s.tree.Root()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// RootAsBigInt returns the current root as a big integer, the form it
// takes in proof public inputs.
func (s *State) RootAsBigInt() (*big.Int, error) {
	root, err := s.tree.Root()
	if err != nil {
		return nil, err
	}
	return arbo.BytesToBigInt(root), nil
}

// treeKey truncates a commitment to the tree's maximum key length.
func treeKey(commitment []byte) []byte {
	if len(commitment) > MaxKeyLen {
		return commitment[:MaxKeyLen]
	}
	return commitment
}

// treeValue re-encodes a big-endian commitment in the little-endian form
// the tree stores its leaves in. Commitments travel big-endian on the
// wire and in proof public inputs.
func treeValue(commitment []byte) []byte {
	return arbo.BigIntToBytes(hashFunc.Len(), new(big.Int).SetBytes(commitment))
}

// checkInField validates that the big-endian value is a member of the
// tree's field.
func checkInField(v []byte) error {
	if new(big.Int).SetBytes(v).Cmp(baseField) >= 0 {
		return fmt.Errorf("%w: %x", ErrNotInField, v)
	}
	return nil
}

// AddNote appends a deposit's commitment to the tree and stores the note
// record, all within one write transaction. Returns the new root.
func (s *State) AddNote(note *types.Note) (types.HexBytes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkInField(note.Commitment); err != nil {
		return nil, err
	}
	if _, err := s.note(note.Commitment); err == nil {
		return nil, fmt.Errorf("%w: %x", ErrNoteExists, note.Commitment)
	}

	wTx := s.base.WriteTx()
	defer wTx.Discard()

	sTx := prefixeddb.NewPrefixedWriteTx(wTx, s.prefix)
	treeTx := prefixeddb.NewPrefixedWriteTx(sTx, treePrefix)
	if err := s.tree.AddWithTx(treeTx, treeKey(note.Commitment), treeValue(note.Commitment)); err != nil {
		return nil, fmt.Errorf("add commitment to tree: %w", err)
	}
	if err := s.storeNote(sTx, note); err != nil {
		return nil, err
	}
	root, err := s.tree.RootWithTx(treeTx)
	if err != nil {
		return nil, fmt.Errorf("compute root: %w", err)
	}
	if err := wTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}
	return root, nil
}

// ApplyTransition atomically consumes the given nullifiers and appends the
// given commitments, advancing the root. It fails with ErrStaleRoot if
// oldRoot is not the current root, ErrNullifierReused if any nullifier is
// already consumed, and ErrRootMismatch if the root computed after the
// insertions differs from newRoot. The optional stage callback runs
// inside the same write transaction, against the shared database, so
// callers can persist artifacts atomically with the transition. On any
// failure no state is changed.
func (s *State) ApplyTransition(oldRoot, newRoot types.HexBytes, nullifiers, commitments []types.HexBytes,
	stage func(db.WriteTx) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.tree.Root()
	if err != nil {
		return fmt.Errorf("read current root: %w", err)
	}
	if !bytes.Equal(current, oldRoot) {
		return fmt.Errorf("%w: have %x, got %x", ErrStaleRoot, current, oldRoot)
	}

	wTx := s.base.WriteTx()
	defer wTx.Discard()
	sTx := prefixeddb.NewPrefixedWriteTx(wTx, s.prefix)

	now := time.Now()
	seen := make(map[string]bool, len(nullifiers))
	for _, n := range nullifiers {
		if seen[string(n)] {
			return fmt.Errorf("%w: %x", ErrNullifierReused, n)
		}
		seen[string(n)] = true
		used, err := s.isNullifierUsed(n)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: %x", ErrNullifierReused, n)
		}
		if err := s.consumeNullifier(sTx, n, now); err != nil {
			return err
		}
	}

	treeTx := prefixeddb.NewPrefixedWriteTx(sTx, treePrefix)
	for _, c := range commitments {
		if err := checkInField(c); err != nil {
			return err
		}
		if err := s.tree.AddWithTx(treeTx, treeKey(c), treeValue(c)); err != nil {
			return fmt.Errorf("add commitment to tree: %w", err)
		}
	}
	computed, err := s.tree.RootWithTx(treeTx)
	if err != nil {
		return fmt.Errorf("compute root: %w", err)
	}
	if !bytes.Equal(computed, newRoot) {
		return fmt.Errorf("%w: computed %x, proposed %x", ErrRootMismatch, computed, newRoot)
	}
	if stage != nil {
		if err := stage(wTx); err != nil {
			return fmt.Errorf("stage transition artifacts: %w", err)
		}
	}
	if err := wTx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// ProjectedRoot computes the root the tree would have after appending the
// given commitments, without mutating any state. Callers use it to build
// the new-root proposal of a transition.
func (s *State) ProjectedRoot(commitments []types.HexBytes) (types.HexBytes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wTx := s.base.WriteTx()
	defer wTx.Discard()

	sTx := prefixeddb.NewPrefixedWriteTx(wTx, s.prefix)
	treeTx := prefixeddb.NewPrefixedWriteTx(sTx, treePrefix)
	for _, c := range commitments {
		if err := checkInField(c); err != nil {
			return nil, err
		}
		if err := s.tree.AddWithTx(treeTx, treeKey(c), treeValue(c)); err != nil {
			return nil, fmt.Errorf("add commitment to tree: %w", err)
		}
	}
	return s.tree.RootWithTx(treeTx)
}
