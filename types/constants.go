package types

const (
	// StateTreeMaxLevels is the maximum number of levels in a pool's
	// commitment merkle tree.
	StateTreeMaxLevels = 160
	// StateKeyMaxLen is the maximum length of a commitment tree key in
	// bytes, ceil(StateTreeMaxLevels/8).
	StateKeyMaxLen = (StateTreeMaxLevels + 7) / 8
	// CommitmentSize is the size in bytes of a note commitment.
	CommitmentSize = 32
	// NullifierSize is the size in bytes of a nullifier.
	NullifierSize = 32
	// RootSize is the size in bytes of a pool root.
	RootSize = 32
	// ActionIDSize is the size in bytes of an action identifier.
	ActionIDSize = 12
)
