package auction

import "github.com/bhavyakukkar/near-nft-auction-demo/protocol"

// Bid is one participant's locked offer. Paid marks that the bid's
// funds have already been resolved (refunded, or updated away) so no
// later path disburses them again.
type Bid struct {
	Amount protocol.Amount `json:"amount"`
	Paid   bool            `json:"paid"`
}

// Entry pairs a bidder with their bid for ordered iteration.
type Entry struct {
	Bidder protocol.AccountID
	Bid    *Bid
}

// Ledger is an insertion-ordered map from bidder to bid. Iteration
// order is admission order; the last entry is the most recently
// accepted distinct bidder, which is what settlement treats as the
// winner.
type Ledger struct {
	bids  map[protocol.AccountID]*Bid
	order []protocol.AccountID
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{bids: make(map[protocol.AccountID]*Bid)}
}

// Get returns the bid for a bidder, if present.
func (l *Ledger) Get(bidder protocol.AccountID) (*Bid, bool) {
	b, ok := l.bids[bidder]
	return b, ok
}

// Contains reports whether the bidder has an entry.
func (l *Ledger) Contains(bidder protocol.AccountID) bool {
	_, ok := l.bids[bidder]
	return ok
}

// Insert appends a new entry. The caller must have checked the bidder
// is not already present; inserting an existing bidder would corrupt
// the order slice.
func (l *Ledger) Insert(bidder protocol.AccountID, bid *Bid) {
	l.bids[bidder] = bid
	l.order = append(l.order, bidder)
}

// Reinsert replaces a bidder's entry and moves it to the end of the
// insertion order, making the bidder the most recently accepted one.
func (l *Ledger) Reinsert(bidder protocol.AccountID, bid *Bid) {
	if _, ok := l.bids[bidder]; ok {
		for i, id := range l.order {
			if id == bidder {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
	l.bids[bidder] = bid
	l.order = append(l.order, bidder)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Last returns the final entry in insertion order.
func (l *Ledger) Last() (protocol.AccountID, *Bid, bool) {
	if len(l.order) == 0 {
		return "", nil, false
	}
	bidder := l.order[len(l.order)-1]
	return bidder, l.bids[bidder], true
}

// Entries returns all entries in insertion order.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.order))
	for _, bidder := range l.order {
		entries = append(entries, Entry{Bidder: bidder, Bid: l.bids[bidder]})
	}
	return entries
}
