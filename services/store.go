package services

import (
	"sync"

	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

// MemoryStore implements auction.Store with deep-copied in-process
// snapshots. Suitable for tests and single-node deployments that accept
// losing live auctions on restart.
type MemoryStore struct {
	mu       sync.Mutex
	auctions map[protocol.AssetKey]*auction.Auction
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{auctions: make(map[protocol.AssetKey]*auction.Auction)}
}

// Save stores a deep copy of the auction so later engine mutations do
// not leak into the snapshot.
func (s *MemoryStore) Save(key protocol.AssetKey, a *auction.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[key] = copyAuction(a)
	return nil
}

// Delete removes the snapshot for a key.
func (s *MemoryStore) Delete(key protocol.AssetKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auctions, key)
	return nil
}

// LoadAll returns deep copies of every stored auction.
func (s *MemoryStore) LoadAll() (map[protocol.AssetKey]*auction.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[protocol.AssetKey]*auction.Auction, len(s.auctions))
	for key, a := range s.auctions {
		out[key] = copyAuction(a)
	}
	return out, nil
}

func copyAuction(a *auction.Auction) *auction.Auction {
	bids := auction.NewLedger()
	for _, entry := range a.Bids.Entries() {
		bid := *entry.Bid
		bids.Insert(entry.Bidder, &bid)
	}
	return &auction.Auction{
		Owner:  a.Owner,
		Bids:   bids,
		Floor:  a.Floor,
		Expiry: a.Expiry,
	}
}
