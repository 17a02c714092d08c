package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/ethereum/go-ethereum/common"
	flag "github.com/spf13/pflag"

	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/pool"
	"github.com/shieldswap/zkrouter/router"
	"github.com/shieldswap/zkrouter/service"
	"github.com/shieldswap/zkrouter/storage"
	"github.com/shieldswap/zkrouter/verifier"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	dataDir := flag.String("dataDir", "./zkrouter-data", "data directory for the key-value store")
	host := flag.String("host", "0.0.0.0", "API host to bind")
	port := flag.Int("port", 9090, "API port to bind")
	logLevel := flag.String("logLevel", "info", "log level (debug, info, warn, error)")
	adminAddr := flag.String("admin", "", "admin address allowed to mutate the pool configuration")
	vkFile := flag.String("vk", "", "groth16 verifying key file; empty runs the dev verifier that accepts every proof")
	pollInterval := flag.Duration("pollInterval", 5*time.Second, "pending action queue poll interval")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if *adminAddr == "" {
		log.Fatalf("missing -admin address")
	}
	if !common.IsHexAddress(*adminAddr) {
		log.Fatalf("invalid -admin address %q", *adminAddr)
	}
	admin := common.HexToAddress(*adminAddr)

	database, err := metadb.New(db.TypePebble, *dataDir)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	var pv verifier.ProofVerifier
	if *vkFile != "" {
		vkBytes, err := os.ReadFile(*vkFile)
		if err != nil {
			log.Fatalf("failed to read verifying key: %v", err)
		}
		pv, err = verifier.NewGroth16Verifier(ecc.BN254, vkBytes)
		if err != nil {
			log.Fatalf("failed to parse verifying key: %v", err)
		}
		log.Infow("groth16 verifier loaded", "vk", *vkFile)
	} else {
		pv = &verifier.StaticVerifier{Result: true}
		log.Warnw("running with the dev verifier, every proof is accepted")
	}

	stg := storage.New(database)
	poolMgr, err := pool.New(stg, admin)
	if err != nil {
		log.Fatalf("failed to load pool configuration: %v", err)
	}
	zk, err := router.New(database, stg, poolMgr, pv, router.DevExecutors())
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiSrv := service.NewAPI(zk, poolMgr, admin, *host, *port)
	if err := apiSrv.Start(ctx); err != nil {
		log.Fatalf("failed to start API service: %v", err)
	}
	workerSrv := service.NewWorker(zk, *pollInterval)
	if err := workerSrv.Start(ctx); err != nil {
		log.Fatalf("failed to start worker service: %v", err)
	}
	log.Infow("router daemon running",
		"dataDir", *dataDir,
		"host", *host,
		"port", *port,
		"admin", admin.Hex())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Infow("shutting down")
	workerSrv.Stop()
	apiSrv.Stop()
	zk.Close()
	if err := database.Close(); err != nil {
		log.Warnw("closing database", "error", err.Error())
	}
}
