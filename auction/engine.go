package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bhavyakukkar/near-nft-auction-demo/effects"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

// Auction is one live auction. Floor is fixed at admission and never
// tracks the highest bid; Expiry is computed once and never recomputed.
type Auction struct {
	Owner  protocol.AccountID
	Bids   *Ledger
	Floor  protocol.Amount
	Expiry uint64
}

// Config assembles an Engine's dependencies.
type Config struct {
	// Log receives store write-through failures and admission records.
	Log *slog.Logger

	// Clock supplies current time. Defaults to SystemClock.
	Clock Clock

	// Custody is the external asset registry client.
	Custody effects.AssetCustody

	// Bank is the payment rail for payouts and refunds.
	Bank effects.Bank

	// Self is this service's own custody account, the escrow recipient
	// of admitted assets.
	Self protocol.AccountID

	// Store persists registry snapshots. Defaults to NoopStore.
	Store Store
}

// Engine holds the auction registry and implements every operation of
// the service. All state is guarded by one mutex; operations never
// block on outbound requests, they return effect chains instead.
type Engine struct {
	mu       sync.Mutex
	log      *slog.Logger
	clock    Clock
	custody  effects.AssetCustody
	bank     effects.Bank
	self     protocol.AccountID
	store    Store
	auctions map[protocol.AssetKey]*Auction
}

// NewEngine creates an engine from the config, applying defaults for
// Log, Clock and Store.
func NewEngine(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	store := cfg.Store
	if store == nil {
		store = NoopStore{}
	}
	return &Engine{
		log:      log,
		clock:    clock,
		custody:  cfg.Custody,
		bank:     cfg.Bank,
		self:     cfg.Self,
		store:    store,
		auctions: make(map[protocol.AssetKey]*Auction),
	}
}

// Restore loads persisted auctions into the registry. Call once at
// boot, before serving requests.
func (e *Engine) Restore() error {
	loaded, err := e.store.LoadAll()
	if err != nil {
		return fmt.Errorf("loading auctions: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for key, a := range loaded {
		e.auctions[key] = a
	}
	return nil
}

// OnApprove handles the custody protocol's approval callback and begins
// admission. It validates the auction parameters and returns a chain
// whose first leg moves the asset into escrow and whose second leg is
// the privileged finalization that records the auction. No registry
// state is touched before the finalization leg runs, so a forged or
// failed callback leaves nothing behind.
func (e *Engine) OnApprove(req *protocol.OnApproveRequest) (*effects.Chain, error) {
	var params protocol.AuctionParams
	if err := json.Unmarshal([]byte(req.Msg), &params); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedRequest, err)
	}

	if params.Duration == 0 {
		return nil, protocol.ErrInvalidParameter
	}

	now := e.clock.Now()
	expiry := now + params.Duration
	if expiry < now {
		return nil, protocol.ErrArithmeticOverflow
	}

	key := protocol.DeriveAssetKey(req.Collection, req.TokenID)

	owner := req.Owner
	floor := params.Floor
	return effects.NewChain(
		effects.TransferAsset(e.custody, req.Collection, req.TokenID, e.self, req.ApprovalID),
		effects.Finalize(owner, func(context.Context) error {
			e.finalizeAdmission(owner, key, expiry, floor)
			return nil
		}),
	), nil
}

// finalizeAdmission records the auction after the escrow transfer has
// been issued. Unexported on purpose: it is reachable only through the
// chain OnApprove returns, never from an external caller.
func (e *Engine) finalizeAdmission(owner protocol.AccountID, key protocol.AssetKey, expiry uint64, floor protocol.Amount) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := &Auction{
		Owner:  owner,
		Bids:   NewLedger(),
		Floor:  floor,
		Expiry: expiry,
	}
	e.auctions[key] = a
	e.persist(key, a)

	e.log.Info("auction started", "key", key, "owner", owner, "floor", floor, "expiry", expiry)
}

// MakeBid admits a bid into an auction's ledger. Validation is
// fail-fast and mutates nothing on failure.
func (e *Engine) MakeBid(collection protocol.AccountID, tokenID protocol.TokenID, amount, deposit protocol.Amount, bidder protocol.AccountID) error {
	key := protocol.DeriveAssetKey(collection, tokenID)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[key]
	if !ok {
		return protocol.ErrNotInAuction
	}
	if amount.Cmp(a.Floor) <= 0 {
		return protocol.ErrBidTooLow
	}
	if deposit.Cmp(amount) < 0 {
		return protocol.ErrInsufficientDeposit
	}
	if a.Bids.Contains(bidder) {
		return protocol.ErrDuplicateBid
	}
	if e.clock.Now() >= a.Expiry {
		return protocol.ErrAuctionExpired
	}

	a.Bids.Insert(bidder, &Bid{Amount: amount})
	e.persist(key, a)
	return nil
}

// UpdateBid replaces the bidder's open bid with a new amount. The old
// entry is marked paid and its amount refunded through the returned
// chain; the new bid re-enters at the end of the insertion order, as
// the most recently accepted bid.
func (e *Engine) UpdateBid(collection protocol.AccountID, tokenID protocol.TokenID, amount, deposit protocol.Amount, bidder protocol.AccountID) (*effects.Chain, error) {
	key := protocol.DeriveAssetKey(collection, tokenID)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[key]
	if !ok {
		return nil, protocol.ErrNotInAuction
	}
	if amount.Cmp(a.Floor) <= 0 {
		return nil, protocol.ErrBidTooLow
	}
	if deposit.Cmp(amount) < 0 {
		return nil, protocol.ErrInsufficientDeposit
	}
	old, ok := a.Bids.Get(bidder)
	if !ok {
		return nil, protocol.ErrNoBid
	}
	if e.clock.Now() >= a.Expiry {
		return nil, protocol.ErrAuctionExpired
	}

	wasPaid := old.Paid
	oldAmount := old.Amount
	a.Bids.Reinsert(bidder, &Bid{Amount: amount})
	e.persist(key, a)

	chain := effects.NewChain()
	if !wasPaid {
		chain.Then(effects.Pay(e.bank, bidder, oldAmount))
	}
	return chain, nil
}

// RefundBid resolves the bidder's open bid outside settlement: the
// entry is marked paid, stays in the ledger so settlement skips it, and
// its amount is refunded through the returned chain. Each bid is
// disbursed at most once across every path.
func (e *Engine) RefundBid(collection protocol.AccountID, tokenID protocol.TokenID, bidder protocol.AccountID) (*effects.Chain, error) {
	key := protocol.DeriveAssetKey(collection, tokenID)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[key]
	if !ok {
		return nil, protocol.ErrNotInAuction
	}
	bid, ok := a.Bids.Get(bidder)
	if !ok {
		return nil, protocol.ErrNoBid
	}
	if bid.Paid {
		return nil, protocol.ErrAlreadyPaid
	}

	bid.Paid = true
	e.persist(key, a)

	return effects.NewChain(effects.Pay(e.bank, bidder, bid.Amount)), nil
}

// EndAuction settles an expired auction. Anyone may call it. The winner
// is the last entry in ledger insertion order, the most recently
// accepted distinct bidder, regardless of amount. The auction is
// removed from the registry before the returned chain executes; a chain
// leg failing later does not restore it.
func (e *Engine) EndAuction(collection protocol.AccountID, tokenID protocol.TokenID, deposit protocol.Amount) (*effects.Chain, error) {
	key := protocol.DeriveAssetKey(collection, tokenID)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[key]
	if !ok {
		return nil, protocol.ErrNotInAuction
	}
	if e.clock.Now() < a.Expiry {
		return nil, protocol.ErrAuctionStillOpen
	}

	var chain *effects.Chain
	if winner, winning, ok := a.Bids.Last(); ok {
		// Approve the winner for the asset, pay the owner the winning
		// amount, then refund every other unpaid bid in admission order.
		chain = effects.NewChain(
			effects.ApproveAsset(e.custody, collection, tokenID, winner, protocol.Amount{}),
			effects.Pay(e.bank, a.Owner, winning.Amount),
		)
		for _, entry := range a.Bids.Entries() {
			if entry.Bidder == winner || entry.Bid.Paid {
				continue
			}
			chain.Then(effects.Pay(e.bank, entry.Bidder, entry.Bid.Amount))
		}
	} else {
		// No bids: return the asset to the owner, passing the caller's
		// entire attached deposit through.
		chain = effects.NewChain(
			effects.ApproveAsset(e.custody, collection, tokenID, a.Owner, deposit),
		)
	}

	delete(e.auctions, key)
	if err := e.store.Delete(key); err != nil {
		e.log.Error("store delete failed", "key", key, "err", err)
	}

	return chain, nil
}

// Len returns the number of live auctions.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.auctions)
}

// Expired reports whether the auction for the asset has passed its
// expiry.
func (e *Engine) Expired(collection protocol.AccountID, tokenID protocol.TokenID) (bool, error) {
	key := protocol.DeriveAssetKey(collection, tokenID)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[key]
	if !ok {
		return false, protocol.ErrNotInAuction
	}
	return e.clock.Now() >= a.Expiry, nil
}

// persist writes an auction snapshot through to the store. Must be
// called with the engine lock held.
func (e *Engine) persist(key protocol.AssetKey, a *Auction) {
	if err := e.store.Save(key, a); err != nil {
		e.log.Error("store save failed", "key", key, "err", err)
	}
}
