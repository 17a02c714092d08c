package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// PutNewAction assigns an ID to the action (the truncated hash of its
// deterministic encoding), persists it in its own transaction and
// returns the ID. The action is expected to be Pending.
func (s *Storage) PutNewAction(a *types.Action) (types.HexBytes, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	id, err := s.stageNewAction(wTx, a)
	if err != nil {
		wTx.Discard()
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		return nil, err
	}
	return id, nil
}

// StageNewAction assigns an ID to the action and stages its write into
// the caller's transaction; the caller commits or discards. Used to
// persist an action atomically with the state transition that accepted
// it. The transaction must come from the same database this storage
// wraps.
func (s *Storage) StageNewAction(wTx db.WriteTx, a *types.Action) (types.HexBytes, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.stageNewAction(wTx, a)
}

func (s *Storage) stageNewAction(wTx db.WriteTx, a *types.Action) (types.HexBytes, error) {
	a.ID = nil
	val, err := encodeArtifact(a)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	a.ID = hashKey(val)
	val, err = encodeArtifact(a)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	pTx := prefixeddb.NewPrefixedWriteTx(wTx, actionPrefix)
	if err := pTx.Set(a.ID, val); err != nil {
		return nil, err
	}
	return a.ID, nil
}

// UpdateAction overwrites a previously stored action, keyed by its ID.
func (s *Storage) UpdateAction(a *types.Action) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	if len(a.ID) == 0 {
		return fmt.Errorf("action has no ID")
	}
	return s.writeAction(a)
}

func (s *Storage) writeAction(a *types.Action) error {
	val, err := encodeArtifact(a)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), actionPrefix)
	if err := wTx.Set(a.ID, val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// Action retrieves an action by ID. Returns ErrNotFound if absent.
func (s *Storage) Action(id types.HexBytes) (*types.Action, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, actionPrefix)
	data, err := rd.Get(id)
	if err != nil {
		return nil, ErrNotFound
	}
	a := &types.Action{}
	if err := decodeArtifact(data, a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return a, nil
}

// NextPendingAction returns the next non-reserved pending action and
// creates a reservation for it. The returned key releases or settles the
// reservation via ReleaseAction / MarkActionDone. Returns
// ErrNoMoreElements when nothing is available.
func (s *Storage) NextPendingAction() (*types.Action, []byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pr := prefixeddb.NewPrefixedReader(s.db, actionPrefix)
	var chosen *types.Action
	var chosenKey []byte
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		if s.isReserved(actionReservPrefix, k) {
			return true
		}
		a := &types.Action{}
		if err := decodeArtifact(v, a); err != nil {
			log.Warnw("failed to decode stored action", "key", fmt.Sprintf("%x", k), "error", err.Error())
			return true
		}
		if a.Status != types.ActionPending {
			return true
		}
		chosen = a
		chosenKey = append([]byte{}, k...)
		return false
	}); err != nil {
		return nil, nil, fmt.Errorf("iterate actions: %w", err)
	}
	if chosen == nil {
		return nil, nil, ErrNoMoreElements
	}
	if err := s.setReservation(actionReservPrefix, chosenKey); err != nil {
		return nil, nil, ErrNoMoreElements
	}
	return chosen, chosenKey, nil
}

// ReleaseAction drops the reservation for a pending action so it can be
// picked up again (retryable executor failure).
func (s *Storage) ReleaseAction(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	if err := s.deleteReservation(actionReservPrefix, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// MarkActionDone settles a reserved action with a terminal status
// (Executed or Failed) and removes the reservation.
func (s *Storage) MarkActionDone(key []byte, a *types.Action, status types.ActionStatus, at time.Time) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := s.deleteReservation(actionReservPrefix, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	a.Status = status
	a.ExecutedAt = at
	return s.writeAction(a)
}

// CountActions returns the number of stored actions, for observability.
func (s *Storage) CountActions() (int, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, actionPrefix)
	count := 0
	if err := rd.Iterate(nil, func(_, _ []byte) bool {
		count++
		return true
	}); err != nil {
		return 0, err
	}
	return count, nil
}
