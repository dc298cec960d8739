// Command auctiond runs the NFT auction service.
//
// The service escrows NFTs admitted through the custody registry's
// approval callback, collects sealed bids against them, and settles
// expired auctions with a payout fan-out to the owner and losing
// bidders.
//
// # Usage
//
//	go run ./cmd/auctiond \
//	    --addr=:8080 \
//	    --custody-url=http://localhost:9000 \
//	    --bank-url=http://localhost:9001 \
//	    --custody-key=<hex ed25519 pubkey> \
//	    --self=auction.example.near
//
// With --pg-host set, live auctions are persisted to PostgreSQL and
// restored at boot; otherwise state is in-memory only.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhavyakukkar/near-nft-auction-demo/api/httpserver"
	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/cmd/common"
	"github.com/bhavyakukkar/near-nft-auction-demo/custody"
	"github.com/bhavyakukkar/near-nft-auction-demo/effects"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
	"github.com/bhavyakukkar/near-nft-auction-demo/services"
)

func main() {
	var (
		addr          = flag.String("addr", ":8080", "HTTP listen address")
		metricsAddr   = flag.String("metrics-addr", "", "metrics listen address (disabled if empty)")
		enablePprof   = flag.Bool("pprof", false, "enable pprof debug API")
		custodyURL    = flag.String("custody-url", "", "custody registry base URL")
		bankURL       = flag.String("bank-url", "", "payment rail base URL")
		custodyKeyHex = flag.String("custody-key", "", "custody registry Ed25519 public key (hex)")
		self          = flag.String("self", "", "this service's own custody account, the escrow holder")
		logJSON       = flag.Bool("log-json", false, "log in JSON format")
		logDebug      = flag.Bool("log-debug", false, "enable debug logging")

		pgHost     = flag.String("pg-host", "", "PostgreSQL host (in-memory store if empty)")
		pgPort     = flag.Int("pg-port", 5432, "PostgreSQL port")
		pgUser     = flag.String("pg-user", "auction", "PostgreSQL user")
		pgPassword = flag.String("pg-password", "", "PostgreSQL password")
		pgDatabase = flag.String("pg-db", "auction", "PostgreSQL database")
		pgSSLMode  = flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	)
	flag.Parse()

	if *custodyURL == "" || *bankURL == "" {
		fmt.Println("Error: --custody-url and --bank-url are required")
		os.Exit(1)
	}
	if *self == "" {
		fmt.Println("Error: --self is required")
		os.Exit(1)
	}

	custodyKey, err := common.LoadPublicKey(*custodyKeyHex)
	if err != nil {
		fmt.Printf("Custody key error: %v\n", err)
		os.Exit(1)
	}

	log := common.NewLogger(*logJSON, *logDebug)

	store, closeStore, err := common.NewStore(&services.PostgresConfig{
		Host:     *pgHost,
		Port:     *pgPort,
		User:     *pgUser,
		Password: *pgPassword,
		Database: *pgDatabase,
		SSLMode:  *pgSSLMode,
	})
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	engine := auction.NewEngine(auction.Config{
		Log:     log,
		Custody: custody.NewHTTPCustody(*custodyURL),
		Bank:    custody.NewHTTPBank(*bankURL),
		Self:    protocol.AccountID(*self),
		Store:   store,
	})
	if err := engine.Restore(); err != nil {
		fmt.Printf("Restore error: %v\n", err)
		os.Exit(1)
	}
	log.Info("auction registry restored", "live", engine.Len())

	handler := services.NewAuctionHandler(&services.HandlerConfig{
		Log:        log,
		Engine:     engine,
		Executor:   effects.NewExecutor(log),
		CustodyKey: custodyKey,
	})

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               *addr,
		MetricsAddr:              *metricsAddr,
		EnablePprof:              *enablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	}, handler)
	if err != nil {
		fmt.Printf("Create server error: %v\n", err)
		os.Exit(1)
	}

	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	srv.Shutdown()
}
