package storage

import (
	"fmt"
	"time"

	"github.com/shieldswap/zkrouter/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var configKey = []byte("pool")

// DefaultPoolConfig is the configuration used until an admin mutates it:
// v3 is the deposit target, v2 is redeem-only (post-migration posture),
// notes age one hour before they are spendable, strict mode is off.
func DefaultPoolConfig() *types.PoolConfig {
	return &types.PoolConfig{
		DefaultVersion: types.PoolVersionV3,
		V2RedeemOnly:   true,
		MinNoteAge:     time.Hour,
		StrictMode:     false,
	}
}

// PoolConfig loads the stored pool configuration, or the default one if
// none has been stored yet.
func (s *Storage) PoolConfig() (*types.PoolConfig, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, configPrefix)
	data, err := rd.Get(configKey)
	if err != nil {
		return DefaultPoolConfig(), nil
	}
	cfg := &types.PoolConfig{}
	if err := decodeArtifact(data, cfg); err != nil {
		return nil, fmt.Errorf("decode pool config: %w", err)
	}
	return cfg, nil
}

// SetPoolConfig persists the pool configuration.
func (s *Storage) SetPoolConfig(cfg *types.PoolConfig) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	data, err := encodeArtifact(cfg)
	if err != nil {
		return fmt.Errorf("encode pool config: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), configPrefix)
	if err := wTx.Set(configKey, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}
