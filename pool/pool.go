// Package pool manages the shielded pool configuration: which pool
// version receives new deposits, whether v2 is redeem-only, the mix
// window length and strict mode. All mutations are admin-gated; readers
// take an immutable snapshot so a submission never observes a
// mid-transition config change.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/types"
)

// ErrUnauthorized is returned when a config mutation does not come from
// the admin.
var ErrUnauthorized = errors.New("caller is not the pool admin")

// Manager owns the pool configuration.
type Manager struct {
	mu    sync.RWMutex
	stg   *storage.Storage
	admin common.Address
	cfg   types.PoolConfig
}

// New loads (or initializes) the pool configuration and returns a
// manager gated on the given admin address.
func New(stg *storage.Storage, admin common.Address) (*Manager, error) {
	cfg, err := stg.PoolConfig()
	if err != nil {
		return nil, fmt.Errorf("load pool config: %w", err)
	}
	return &Manager{
		stg:   stg,
		admin: admin,
		cfg:   *cfg,
	}, nil
}

// Snapshot returns a consistent copy of the current configuration. All
// guard decisions within one submission must read the same snapshot.
func (m *Manager) Snapshot() types.PoolConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) mutate(auth common.Address, apply func(*types.PoolConfig)) error {
	if auth != m.admin {
		return fmt.Errorf("%w: %s", ErrUnauthorized, auth)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.cfg
	apply(&next)
	if err := m.stg.SetPoolConfig(&next); err != nil {
		return fmt.Errorf("persist pool config: %w", err)
	}
	m.cfg = next
	return nil
}

// SetDefaultVersion sets the pool version new deposits default to.
func (m *Manager) SetDefaultVersion(auth common.Address, v types.PoolVersion) error {
	if !v.Valid() {
		return fmt.Errorf("invalid pool version %d", v)
	}
	err := m.mutate(auth, func(c *types.PoolConfig) { c.DefaultVersion = v })
	if err == nil {
		log.Infow("pool default version updated", "version", v.String())
	}
	return err
}

// SetV2RedeemOnly toggles redeem-only mode for the legacy v2 pool. While
// enabled, no new commitments may enter v2; spends of existing v2 notes
// remain accepted.
func (m *Manager) SetV2RedeemOnly(auth common.Address, redeemOnly bool) error {
	err := m.mutate(auth, func(c *types.PoolConfig) { c.V2RedeemOnly = redeemOnly })
	if err == nil {
		log.Infow("v2 redeem-only updated", "redeemOnly", redeemOnly)
	}
	return err
}

// SetMinNoteAge sets the mix window: the minimum time a note must age
// before it can be spent.
func (m *Manager) SetMinNoteAge(auth common.Address, age time.Duration) error {
	if age < 0 {
		return fmt.Errorf("negative note age %s", age)
	}
	err := m.mutate(auth, func(c *types.PoolConfig) { c.MinNoteAge = age })
	if err == nil {
		log.Infow("min note age updated", "age", age.String())
	}
	return err
}

// SetStrictMode toggles the strict anti-linkability rules.
func (m *Manager) SetStrictMode(auth common.Address, strict bool) error {
	err := m.mutate(auth, func(c *types.PoolConfig) { c.StrictMode = strict })
	if err == nil {
		log.Infow("strict mode updated", "strict", strict)
	}
	return err
}
