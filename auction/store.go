package auction

import "github.com/bhavyakukkar/near-nft-auction-demo/protocol"

// Store persists a snapshot of the registry so a restarted service can
// pick up its live auctions. The in-memory registry stays canonical:
// the engine writes through after each committed mutation and treats
// store failures as a durability loss to log, not a reason to unwind
// already-committed state.
type Store interface {
	// Save upserts an auction and its full bid ledger.
	Save(key protocol.AssetKey, a *Auction) error

	// Delete removes an auction and its bids. Deleting an absent key is
	// not an error.
	Delete(key protocol.AssetKey) error

	// LoadAll returns every persisted auction, ledgers in insertion
	// order.
	LoadAll() (map[protocol.AssetKey]*Auction, error)
}

// NoopStore discards writes and loads nothing. Used when the service
// runs without a persistence backend.
type NoopStore struct{}

func (NoopStore) Save(protocol.AssetKey, *Auction) error { return nil }
func (NoopStore) Delete(protocol.AssetKey) error         { return nil }
func (NoopStore) LoadAll() (map[protocol.AssetKey]*Auction, error) {
	return map[protocol.AssetKey]*Auction{}, nil
}
