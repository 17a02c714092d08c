package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// DepositsEndpoint is the endpoint for creating a shielded deposit
	DepositsEndpoint = "/deposits"
	// ActionsEndpoint is the endpoint for submitting a proof-bound action
	ActionsEndpoint = "/actions"
	// ActionEndpoint is the endpoint to get an action's status
	ActionURLParam = "actionId"
	ActionEndpoint = "/actions/{" + ActionURLParam + "}"
	// ExecuteActionEndpoint is the endpoint to execute a pending action
	ExecuteActionEndpoint = "/actions/{" + ActionURLParam + "}/execute"
	// RootEndpoint is the endpoint to get the current registry root of a pool
	PoolURLParam = "poolVersion"
	RootEndpoint = "/pools/{" + PoolURLParam + "}/root"
	// NullifierEndpoint is the endpoint to check whether a nullifier has
	// been consumed in a pool
	NullifierURLParam = "nullifier"
	NullifierEndpoint = "/pools/{" + PoolURLParam + "}/nullifiers/{" + NullifierURLParam + "}"
	// CommitmentProofEndpoint is the endpoint to get a merkle proof for a
	// commitment against the current root
	CommitmentURLParam      = "commitment"
	CommitmentProofEndpoint = "/pools/{" + PoolURLParam + "}/commitments/{" + CommitmentURLParam + "}/proof"
	// ConfigEndpoint is the endpoint to read or (admin-only) mutate the
	// pool configuration
	ConfigEndpoint = "/config"
)

// CallerHeader carries the caller address of a request. Admin endpoints
// check it against the configured admin; the strict-mode guard uses it to
// tell call sequences apart.
const CallerHeader = "X-Caller-Address"
