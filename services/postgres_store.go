package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
	_ "github.com/lib/pq"
)

// PostgresStore implements auction.Store with PostgreSQL persistence,
// so a restarted service resumes its live auctions.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	// Asset keys and amounts are stored as text: keys are unsigned
	// 64-bit values and amounts exceed int64 entirely.
	schema := `
	CREATE TABLE IF NOT EXISTS auctions (
		asset_key VARCHAR(32) PRIMARY KEY,
		owner VARCHAR(256) NOT NULL,
		floor VARCHAR(64) NOT NULL,
		expiry VARCHAR(32) NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS bids (
		asset_key VARCHAR(32) NOT NULL REFERENCES auctions(asset_key) ON DELETE CASCADE,
		bidder VARCHAR(256) NOT NULL,
		amount VARCHAR(64) NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		position INT NOT NULL,
		PRIMARY KEY (asset_key, bidder)
	);

	CREATE INDEX IF NOT EXISTS idx_bids_order ON bids(asset_key, position);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save upserts the auction row and rewrites its bids, preserving ledger
// insertion order through the position column.
func (s *PostgresStore) Save(key protocol.AssetKey, a *auction.Auction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO auctions (asset_key, owner, floor, expiry, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (asset_key) DO UPDATE SET
		owner = EXCLUDED.owner,
		floor = EXCLUDED.floor,
		expiry = EXCLUDED.expiry,
		updated_at = NOW()`,
		key.String(), string(a.Owner), a.Floor.String(), strconv.FormatUint(a.Expiry, 10))
	if err != nil {
		return fmt.Errorf("saving auction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE asset_key = $1`, key.String()); err != nil {
		return fmt.Errorf("clearing bids: %w", err)
	}

	for i, entry := range a.Bids.Entries() {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO bids (asset_key, bidder, amount, paid, position)
		VALUES ($1, $2, $3, $4, $5)`,
			key.String(), string(entry.Bidder), entry.Bid.Amount.String(), entry.Bid.Paid, i)
		if err != nil {
			return fmt.Errorf("saving bid: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes an auction and, through the cascade, its bids.
func (s *PostgresStore) Delete(key protocol.AssetKey) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM auctions WHERE asset_key = $1`, key.String())
	if err != nil {
		return fmt.Errorf("deleting auction: %w", err)
	}
	return nil
}

// LoadAll reads every persisted auction, rebuilding each ledger in
// insertion order.
func (s *PostgresStore) LoadAll() (map[protocol.AssetKey]*auction.Auction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT asset_key, owner, floor, expiry FROM auctions`)
	if err != nil {
		return nil, fmt.Errorf("querying auctions: %w", err)
	}
	defer rows.Close()

	out := make(map[protocol.AssetKey]*auction.Auction)
	for rows.Next() {
		var keyStr, owner, floorStr, expiryStr string
		if err := rows.Scan(&keyStr, &owner, &floorStr, &expiryStr); err != nil {
			return nil, fmt.Errorf("scanning auction: %w", err)
		}

		key, err := parseAssetKey(keyStr)
		if err != nil {
			return nil, err
		}
		floor, err := protocol.ParseAmount(floorStr)
		if err != nil {
			return nil, fmt.Errorf("parsing floor: %w", err)
		}
		expiry, err := strconv.ParseUint(expiryStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing expiry: %w", err)
		}

		out[key] = &auction.Auction{
			Owner:  protocol.AccountID(owner),
			Bids:   auction.NewLedger(),
			Floor:  floor,
			Expiry: expiry,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bidRows, err := s.db.QueryContext(ctx, `
	SELECT asset_key, bidder, amount, paid FROM bids ORDER BY asset_key, position`)
	if err != nil {
		return nil, fmt.Errorf("querying bids: %w", err)
	}
	defer bidRows.Close()

	for bidRows.Next() {
		var keyStr, bidder, amountStr string
		var paid bool
		if err := bidRows.Scan(&keyStr, &bidder, &amountStr, &paid); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}

		key, err := parseAssetKey(keyStr)
		if err != nil {
			return nil, err
		}
		amount, err := protocol.ParseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing bid amount: %w", err)
		}

		a, ok := out[key]
		if !ok {
			continue // orphan row, auction deleted concurrently
		}
		a.Bids.Insert(protocol.AccountID(bidder), &auction.Bid{Amount: amount, Paid: paid})
	}
	return out, bidRows.Err()
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func parseAssetKey(s string) (protocol.AssetKey, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing asset key %q: %w", s, err)
	}
	return protocol.AssetKey(v), nil
}
