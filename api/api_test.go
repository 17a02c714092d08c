package api_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shieldswap/zkrouter/api"
	"github.com/shieldswap/zkrouter/api/client"
	"github.com/shieldswap/zkrouter/crypto/binding"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/types"
	"github.com/shieldswap/zkrouter/util"
	"github.com/shieldswap/zkrouter/verifier"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db/metadb"
)

var (
	adminAddr     = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	assetAddr     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	recipientAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	depositorAddr = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

type apiTestEnv struct {
	server *httptest.Server
	client *client.HTTPclient
	zk     *router.Router
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	database := metadb.NewTest(t)
	stg := storage.New(database)
	mgr, err := pool.New(stg, adminAddr)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, mgr.SetMinNoteAge(adminAddr, 0), qt.IsNil)

	zk, err := router.New(database, stg, mgr, &verifier.StaticVerifier{Result: true}, router.DevExecutors())
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(zk.Close)

	a, err := api.NewHandler(&api.APIConfig{Router: zk, Pool: mgr, Admin: adminAddr})
	qt.Assert(t, err, qt.IsNil)
	server := httptest.NewServer(a.Router())
	t.Cleanup(server.Close)

	c, err := client.New(server.URL)
	qt.Assert(t, err, qt.IsNil)
	c.SetCaller(depositorAddr.Hex())
	return &apiTestEnv{server: server, client: c, zk: zk}
}

func (env *apiTestEnv) deposit(t *testing.T) *api.DepositResponse {
	body := &api.Deposit{
		PoolVersion:     "v3",
		Denomination:    (*types.BigInt)(big.NewInt(10)),
		LockedRecipient: recipientAddr,
		Depositor:       depositorAddr,
	}
	data, status, err := env.client.Request(client.HTTPPOST, body, nil, api.DepositsEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))
	resp := &api.DepositResponse{}
	qt.Assert(t, json.Unmarshal(data, resp), qt.IsNil)
	return resp
}

// buildSubmission constructs a consistent proof-bound submission spending
// the given note against the current root.
func (env *apiTestEnv) buildSubmission(t *testing.T, note *types.Note) *api.ActionSubmission {
	data, status, err := env.client.Request(client.HTTPGET, nil, nil, "/pools/v3/root")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK)
	rootResp := &api.RootResponse{}
	qt.Assert(t, json.Unmarshal(data, rootResp), qt.IsNil)

	nullifier := types.HexBytes(util.RandomInField())
	change := types.HexBytes(util.RandomInField())
	newRoot, err := env.zk.ProjectedRoot(types.PoolVersionV3, []types.HexBytes{change})
	qt.Assert(t, err, qt.IsNil)

	amount := big.NewInt(10)
	hash := binding.Bind(types.ActionSwap, assetAddr, amount, recipientAddr)
	inputs := []*types.BigInt{
		(*types.BigInt)(arbo.BytesToBigInt(rootResp.Root)),
		(*types.BigInt)(arbo.BytesToBigInt(newRoot)),
		(*types.BigInt)(binding.AsBigInt(hash)),
		(*types.BigInt)(new(big.Int).SetBytes(nullifier)),
		(*types.BigInt)(new(big.Int).SetBytes(change)),
		(*types.BigInt)(new(big.Int).SetBytes(note.Commitment)),
	}
	return &api.ActionSubmission{
		Type:             "swap",
		PoolVersion:      "v3",
		OldRoot:          rootResp.Root,
		NewRoot:          newRoot,
		Nullifiers:       []types.HexBytes{nullifier},
		Commitments:      []types.HexBytes{change},
		SpentCommitments: []types.HexBytes{note.Commitment},
		Asset:            assetAddr,
		Amount:           (*types.BigInt)(amount),
		Recipient:        recipientAddr,
		PublicInputs:     inputs,
		Proof:            util.RandomBytes(64),
	}
}

func TestAPIDepositAndQueries(t *testing.T) {
	env := newAPITestEnv(t)

	resp := env.deposit(t)
	qt.Assert(t, len(resp.Note.Commitment), qt.Equals, types.CommitmentSize)
	qt.Assert(t, len(resp.Root) > 0, qt.IsTrue)

	// The commitment is provable against the advertised root.
	data, status, err := env.client.Request(client.HTTPGET, nil, nil,
		"/pools/v3/commitments/"+resp.Note.Commitment.String()+"/proof")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))

	// An unknown pool version is rejected.
	_, status, err = env.client.Request(client.HTTPGET, nil, nil, "/pools/v9/root")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusBadRequest)
}

func TestAPISubmitAndExecute(t *testing.T) {
	env := newAPITestEnv(t)

	dep := env.deposit(t)
	sub := env.buildSubmission(t, dep.Note)

	data, status, err := env.client.Request(client.HTTPPOST, sub, nil, api.ActionsEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))
	subResp := &api.ActionSubmissionResponse{}
	qt.Assert(t, json.Unmarshal(data, subResp), qt.IsNil)

	// The consumed nullifier is now visible.
	data, status, err = env.client.Request(client.HTTPGET, nil, nil,
		"/pools/v3/nullifiers/"+sub.Nullifiers[0].String())
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK)
	nresp := &api.NullifierResponse{}
	qt.Assert(t, json.Unmarshal(data, nresp), qt.IsNil)
	qt.Assert(t, nresp.Used, qt.IsTrue)

	// Execute with matching parameters.
	execReq := &api.ExecuteRequest{
		Type:      "swap",
		Asset:     assetAddr,
		Amount:    sub.Amount,
		Recipient: recipientAddr,
	}
	data, status, err = env.client.Request(client.HTTPPOST, execReq, nil,
		"/actions/"+subResp.ActionID.String()+"/execute")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))

	// The action is now settled; a replayed execution conflicts.
	data, status, err = env.client.Request(client.HTTPGET, nil, nil, "/actions/"+subResp.ActionID.String())
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK)
	action := &types.Action{}
	qt.Assert(t, json.Unmarshal(data, action), qt.IsNil)
	qt.Assert(t, action.Status, qt.Equals, types.ActionExecuted)

	_, status, err = env.client.Request(client.HTTPPOST, execReq, nil,
		"/actions/"+subResp.ActionID.String()+"/execute")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusConflict)
}

func TestAPIExecuteBindingMismatch(t *testing.T) {
	env := newAPITestEnv(t)

	dep := env.deposit(t)
	sub := env.buildSubmission(t, dep.Note)
	data, status, err := env.client.Request(client.HTTPPOST, sub, nil, api.ActionsEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))
	subResp := &api.ActionSubmissionResponse{}
	qt.Assert(t, json.Unmarshal(data, subResp), qt.IsNil)

	// A substituted recipient must be rejected.
	execReq := &api.ExecuteRequest{
		Type:      "swap",
		Asset:     assetAddr,
		Amount:    sub.Amount,
		Recipient: common.HexToAddress("0x00000000000000000000000000000000000000ee"),
	}
	_, status, err = env.client.Request(client.HTTPPOST, execReq, nil,
		"/actions/"+subResp.ActionID.String()+"/execute")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusBadRequest)
}

func TestAPIConfigAdminGating(t *testing.T) {
	env := newAPITestEnv(t)

	strict := true
	update := &api.ConfigUpdate{StrictMode: &strict}

	// Non-admin caller is rejected.
	_, status, err := env.client.Request(client.HTTPPUT, update, nil, api.ConfigEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusForbidden)

	// Admin caller succeeds and the mutation is visible.
	env.client.SetCaller(adminAddr.Hex())
	data, status, err := env.client.Request(client.HTTPPUT, update, nil, api.ConfigEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", data))

	data, status, err = env.client.Request(client.HTTPGET, nil, nil, api.ConfigEndpoint)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, status, qt.Equals, http.StatusOK)
	cfg := &types.PoolConfig{}
	qt.Assert(t, json.Unmarshal(data, cfg), qt.IsNil)
	qt.Assert(t, cfg.StrictMode, qt.IsTrue)
}
