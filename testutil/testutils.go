package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

// FakeClock is a manually-advanced Clock for driving expiry behavior in
// tests.
type FakeClock struct {
	mu  sync.Mutex
	now uint64
}

// NewFakeClock creates a clock frozen at now (nanoseconds).
func NewFakeClock(now uint64) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the frozen time.
func (c *FakeClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d nanoseconds.
func (c *FakeClock) Advance(d uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Set jumps the clock to an absolute instant.
func (c *FakeClock) Set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// CustodyCall records one call against CaptureCustody.
type CustodyCall struct {
	Op         string // "transfer" or "approve"
	Collection protocol.AccountID
	TokenID    protocol.TokenID
	Recipient  protocol.AccountID
	ApprovalID uint64
	Deposit    protocol.Amount
}

// CaptureCustody implements effects.AssetCustody, recording every call
// in order. Errs injects failures keyed by call index (0-based, over
// both operations combined).
type CaptureCustody struct {
	mu    sync.Mutex
	Calls []CustodyCall
	Errs  map[int]error
}

// NewCaptureCustody creates an empty capture double.
func NewCaptureCustody() *CaptureCustody {
	return &CaptureCustody{Errs: make(map[int]error)}
}

func (c *CaptureCustody) record(call CustodyCall) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.Calls)
	c.Calls = append(c.Calls, call)
	return c.Errs[idx]
}

// Transfer records an escrow transfer request.
func (c *CaptureCustody) Transfer(_ context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, approvalID uint64) error {
	return c.record(CustodyCall{
		Op:         "transfer",
		Collection: collection,
		TokenID:    tokenID,
		Recipient:  recipient,
		ApprovalID: approvalID,
	})
}

// Approve records an approval request.
func (c *CaptureCustody) Approve(_ context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, deposit protocol.Amount) error {
	return c.record(CustodyCall{
		Op:         "approve",
		Collection: collection,
		TokenID:    tokenID,
		Recipient:  recipient,
		Deposit:    deposit,
	})
}

// PaymentCall records one payment against CaptureBank.
type PaymentCall struct {
	Recipient protocol.AccountID
	Amount    protocol.Amount
}

// CaptureBank implements effects.Bank, recording every payment in
// order. Errs injects failures keyed by payment index.
type CaptureBank struct {
	mu       sync.Mutex
	Payments []PaymentCall
	Errs     map[int]error
}

// NewCaptureBank creates an empty capture double.
func NewCaptureBank() *CaptureBank {
	return &CaptureBank{Errs: make(map[int]error)}
}

// Pay records a payment request.
func (b *CaptureBank) Pay(_ context.Context, recipient protocol.AccountID, amount protocol.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.Payments)
	b.Payments = append(b.Payments, PaymentCall{Recipient: recipient, Amount: amount})
	return b.Errs[idx]
}

// PaidTo returns how many payments went to the recipient.
func (b *CaptureBank) PaidTo(recipient protocol.AccountID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.Payments {
		if p.Recipient == recipient {
			n++
		}
	}
	return n
}

// AuctionMsg renders an AuctionParams payload the way custodians attach
// it to approval callbacks.
func AuctionMsg(duration uint64, floor protocol.Amount) string {
	return fmt.Sprintf(`{"duration":%d,"floor":"%s"}`, duration, floor)
}
