// Package common provides shared utilities for the auction CLI
// commands: key loading and generation, logger construction, and store
// selection for the service binary.
package common

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/crypto"
	"github.com/bhavyakukkar/near-nft-auction-demo/services"
)

// LoadOrGenerateSigningKey loads an Ed25519 private key from a hex
// string, or generates a new key pair if hexKey is empty.
func LoadOrGenerateSigningKey(hexKey string) (crypto.PrivateKey, error) {
	if hexKey != "" {
		keyBytes, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return crypto.NewPrivateKeyFromBytes(keyBytes), nil
	}
	_, privKey, err := crypto.GenerateKeyPair()
	return privKey, err
}

// LoadPublicKey parses a hex-encoded Ed25519 public key.
func LoadPublicKey(hexKey string) (crypto.PublicKey, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("public key is required")
	}
	return crypto.NewPublicKeyFromString(hexKey)
}

// NewLogger builds the process logger. JSON output is for production
// deployments behind log collectors; text for local runs.
func NewLogger(json, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// NewStore selects the auction store: Postgres when a host is
// configured, in-memory otherwise. The returned closer is a no-op for
// the memory store.
func NewStore(pg *services.PostgresConfig) (auction.Store, func() error, error) {
	if pg.Host == "" {
		return services.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := services.NewPostgresStore(pg)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
