package effects

import (
	"context"
	"fmt"

	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

// Kind classifies a pending effect.
type Kind string

const (
	// AssetTransfer moves a token into the service's escrow using a
	// custody approval id.
	AssetTransfer Kind = "asset_transfer"

	// AssetApprove authorizes a recipient to take a token out of escrow.
	AssetApprove Kind = "asset_approve"

	// Payment transfers funds to a recipient.
	Payment Kind = "payment"

	// FinalizeAuction is the privileged self-call that records an
	// auction after its custody transfer has been issued. It is only
	// ever constructed by the engine and never reachable from outside
	// the process.
	FinalizeAuction Kind = "finalize_auction"
)

// AssetCustody is the external custody protocol's contract: it can move
// a token to a recipient given an authorization, and approve a recipient
// for a token. Delivery guarantees are the custody protocol's, not ours.
type AssetCustody interface {
	Transfer(ctx context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, approvalID uint64) error
	Approve(ctx context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, deposit protocol.Amount) error
}

// Bank is the payment rail used for seller payouts and bidder refunds.
type Bank interface {
	Pay(ctx context.Context, recipient protocol.AccountID, amount protocol.Amount) error
}

// Effect is one pending outbound action. The closure is bound at
// construction; running it is the Executor's job.
type Effect struct {
	Kind      Kind
	Recipient protocol.AccountID
	// Amount is the funds moved by Payment and AssetApprove legs; zero
	// for the others.
	Amount protocol.Amount

	run func(ctx context.Context) error
}

// Describe returns a short human-readable summary for logs.
func (e Effect) Describe() string {
	if e.Amount.IsZero() {
		return fmt.Sprintf("%s -> %s", e.Kind, e.Recipient)
	}
	return fmt.Sprintf("%s %s -> %s", e.Kind, e.Amount, e.Recipient)
}

// TransferAsset builds the escrow-transfer leg of an admission chain.
func TransferAsset(custody AssetCustody, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, approvalID uint64) Effect {
	return Effect{
		Kind:      AssetTransfer,
		Recipient: recipient,
		run: func(ctx context.Context) error {
			return custody.Transfer(ctx, collection, tokenID, recipient, approvalID)
		},
	}
}

// ApproveAsset builds a leg that approves a recipient for a token,
// attaching the given deposit.
func ApproveAsset(custody AssetCustody, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, deposit protocol.Amount) Effect {
	return Effect{
		Kind:      AssetApprove,
		Recipient: recipient,
		Amount:    deposit,
		run: func(ctx context.Context) error {
			return custody.Approve(ctx, collection, tokenID, recipient, deposit)
		},
	}
}

// Pay builds a payout leg.
func Pay(bank Bank, recipient protocol.AccountID, amount protocol.Amount) Effect {
	return Effect{
		Kind:      Payment,
		Recipient: recipient,
		Amount:    amount,
		run: func(ctx context.Context) error {
			return bank.Pay(ctx, recipient, amount)
		},
	}
}

// Finalize builds the privileged admission continuation. The recipient
// records which account the finalized auction belongs to.
func Finalize(owner protocol.AccountID, fn func(ctx context.Context) error) Effect {
	return Effect{
		Kind:      FinalizeAuction,
		Recipient: owner,
		run:       fn,
	}
}

// Chain is the ordered list of pending effects declared by a single
// invocation.
type Chain struct {
	legs []Effect
}

// NewChain creates a chain from the given legs, in order.
func NewChain(legs ...Effect) *Chain {
	return &Chain{legs: legs}
}

// Then appends a leg and returns the chain for chaining declarations.
func (c *Chain) Then(e Effect) *Chain {
	c.legs = append(c.legs, e)
	return c
}

// Legs returns the pending effects in execution order.
func (c *Chain) Legs() []Effect {
	return c.legs
}

// Len returns the number of legs.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.legs)
}
