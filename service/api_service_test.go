package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/service"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/verifier"
	"go.vocdoni.io/dvote/db/metadb"
)

var admin = common.HexToAddress("0x00000000000000000000000000000000000000ad")

func TestAPIServiceStartStop(t *testing.T) {
	database := metadb.NewTest(t)
	stg := storage.New(database)
	mgr, err := pool.New(stg, admin)
	qt.Assert(t, err, qt.IsNil)
	zk, err := router.New(database, stg, mgr, &verifier.StaticVerifier{Result: true}, router.DevExecutors())
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(zk.Close)

	srv := service.NewAPI(zk, mgr, admin, "127.0.0.1", 0)
	qt.Assert(t, srv.Start(context.Background()), qt.IsNil)
	addr := srv.Addr()
	qt.Assert(t, addr != "", qt.IsTrue)

	resp, err := http.Get("http://" + addr + "/ping")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, resp.StatusCode, qt.Equals, http.StatusOK)
	qt.Assert(t, resp.Body.Close(), qt.IsNil)

	// A second start while running is rejected.
	qt.Assert(t, srv.Start(context.Background()), qt.IsNotNil)

	// Stop must actually close the listener, not just flag the service
	// as stopped.
	srv.Stop()
	if _, err := http.Get("http://" + addr + "/ping"); err == nil { //nolint:bodyclose
		t.Fatal("API server still accepting connections after Stop")
	}
}
