package auction

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/bhavyakukkar/near-nft-auction-demo/effects"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
	"github.com/bhavyakukkar/near-nft-auction-demo/testutil"
	"github.com/stretchr/testify/require"
)

const (
	collection = protocol.AccountID("nft.collection.test")
	tokenID    = protocol.TokenID("token-1")
	owner      = protocol.AccountID("owner.test")
	escrow     = protocol.AccountID("auction.service.test")
)

type fixture struct {
	engine  *Engine
	clock   *testutil.FakeClock
	custody *testutil.CaptureCustody
	bank    *testutil.CaptureBank
	exec    *effects.Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.NewFakeClock(1_000_000)
	custody := testutil.NewCaptureCustody()
	bank := testutil.NewCaptureBank()
	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return &fixture{
		engine: NewEngine(Config{
			Log:     log,
			Clock:   clock,
			Custody: custody,
			Bank:    bank,
			Self:    escrow,
		}),
		clock:   clock,
		custody: custody,
		bank:    bank,
		exec:    effects.NewExecutor(log),
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// admit runs the full two-step admission: approval callback plus the
// returned chain (escrow transfer, then privileged finalization).
func (f *fixture) admit(t *testing.T, duration uint64, floor protocol.Amount) {
	t.Helper()
	chain, err := f.engine.OnApprove(&protocol.OnApproveRequest{
		Collection: collection,
		TokenID:    tokenID,
		Owner:      owner,
		ApprovalID: 7,
		Msg:        testutil.AuctionMsg(duration, floor),
	})
	require.NoError(t, err)
	for _, o := range f.exec.Execute(context.Background(), chain) {
		require.NoError(t, o.Err)
	}
}

func TestAdmissionRejectsZeroDuration(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.OnApprove(&protocol.OnApproveRequest{
		Collection: collection,
		TokenID:    tokenID,
		Owner:      owner,
		Msg:        testutil.AuctionMsg(0, protocol.NewAmount(10)),
	})
	require.ErrorIs(t, err, protocol.ErrInvalidParameter)
	require.Equal(t, 0, f.engine.Len())
	require.Empty(t, f.custody.Calls, "no custody request may be issued on a rejected admission")
}

func TestAdmissionRejectsNegativeAndGarbagePayloads(t *testing.T) {
	f := newFixture(t)

	for _, msg := range []string{
		`{"duration":-5,"floor":"10"}`, // negative does not fit the duration type
		`{"duration":"soon"}`,
		`not json at all`,
		``,
	} {
		_, err := f.engine.OnApprove(&protocol.OnApproveRequest{
			Collection: collection,
			TokenID:    tokenID,
			Owner:      owner,
			Msg:        msg,
		})
		require.ErrorIs(t, err, protocol.ErrMalformedRequest, "msg %q", msg)
	}
	require.Equal(t, 0, f.engine.Len())
}

func TestAdmissionRejectsExpiryOverflow(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(math.MaxUint64 - 100)

	_, err := f.engine.OnApprove(&protocol.OnApproveRequest{
		Collection: collection,
		TokenID:    tokenID,
		Owner:      owner,
		Msg:        testutil.AuctionMsg(200, protocol.NewAmount(10)),
	})
	require.ErrorIs(t, err, protocol.ErrArithmeticOverflow)
	require.Equal(t, 0, f.engine.Len())
}

func TestAdmissionRecordsAuctionOnlyThroughChain(t *testing.T) {
	f := newFixture(t)

	chain, err := f.engine.OnApprove(&protocol.OnApproveRequest{
		Collection: collection,
		TokenID:    tokenID,
		Owner:      owner,
		ApprovalID: 7,
		Msg:        testutil.AuctionMsg(1000, protocol.NewAmount(10)),
	})
	require.NoError(t, err)

	// Nothing is recorded before the chain runs: custody has not
	// confirmed escrow yet.
	require.Equal(t, 0, f.engine.Len())
	require.Equal(t, 2, chain.Len())

	f.exec.Execute(context.Background(), chain)
	require.Equal(t, 1, f.engine.Len())

	// First leg moved the asset into escrow with the approval id.
	require.Len(t, f.custody.Calls, 1)
	require.Equal(t, "transfer", f.custody.Calls[0].Op)
	require.Equal(t, escrow, f.custody.Calls[0].Recipient)
	require.Equal(t, uint64(7), f.custody.Calls[0].ApprovalID)
}

func TestMakeBidValidationLadder(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(10))

	// Unknown asset.
	err := f.engine.MakeBid(collection, "no-such-token", protocol.NewAmount(11), protocol.NewAmount(11), "alice")
	require.ErrorIs(t, err, protocol.ErrNotInAuction)

	// Amount must strictly exceed the floor.
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice")
	require.ErrorIs(t, err, protocol.ErrBidTooLow)

	// Deposit must cover the amount.
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(11), protocol.NewAmount(10), "alice")
	require.ErrorIs(t, err, protocol.ErrInsufficientDeposit)

	// First valid bid is admitted exactly once.
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(11), protocol.NewAmount(11), "alice")
	require.NoError(t, err)

	// Second bid from the same participant is a duplicate.
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "alice")
	require.ErrorIs(t, err, protocol.ErrDuplicateBid)

	// After expiry no bids are admitted.
	f.clock.Advance(1000)
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "bob")
	require.ErrorIs(t, err, protocol.ErrAuctionExpired)
}

func TestSettleSelectsLastInsertedBidder(t *testing.T) {
	// The winner is the last admitted distinct bidder, not the highest
	// amount. Verify with amounts in both orders.
	cases := []struct {
		name             string
		amountA, amountB uint64
	}{
		{name: "later bid is higher", amountA: 10, amountB: 20},
		{name: "later bid is lower", amountA: 20, amountB: 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.admit(t, 1000, protocol.NewAmount(5))

			require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(tc.amountA), protocol.NewAmount(tc.amountA), "alice"))
			require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(tc.amountB), protocol.NewAmount(tc.amountB), "bob"))

			f.clock.Advance(1000)
			chain, err := f.engine.EndAuction(collection, tokenID, protocol.Amount{})
			require.NoError(t, err)
			f.exec.Execute(context.Background(), chain)

			// Asset goes to bob, the last-inserted bidder.
			require.Len(t, f.custody.Calls, 2) // escrow transfer + winner approval
			approve := f.custody.Calls[1]
			require.Equal(t, "approve", approve.Op)
			require.Equal(t, protocol.AccountID("bob"), approve.Recipient)

			// Owner is paid bob's amount; alice is refunded hers.
			require.Equal(t, []testutil.PaymentCall{
				{Recipient: owner, Amount: protocol.NewAmount(tc.amountB)},
				{Recipient: "alice", Amount: protocol.NewAmount(tc.amountA)},
			}, f.bank.Payments)
		})
	}
}

func TestSettleBeforeExpiryLeavesAuctionUntouched(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(6), protocol.NewAmount(6), "alice"))

	_, err := f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.ErrorIs(t, err, protocol.ErrAuctionStillOpen)

	// Still present and unmodified: the same bid would still be a
	// duplicate and the count is unchanged.
	require.Equal(t, 1, f.engine.Len())
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(7), protocol.NewAmount(7), "alice")
	require.ErrorIs(t, err, protocol.ErrDuplicateBid)
}

func TestSettleUnknownAsset(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.ErrorIs(t, err, protocol.ErrNotInAuction)
}

func TestSettleWithoutBidsReturnsAssetAndDeposit(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))
	f.clock.Advance(1000)

	deposit := protocol.NewAmount(31337)
	chain, err := f.engine.EndAuction(collection, tokenID, deposit)
	require.NoError(t, err)
	require.Equal(t, 0, f.engine.Len(), "removed before the chain executes")

	f.exec.Execute(context.Background(), chain)

	// Single approval back to the owner carrying the caller's whole
	// deposit; no payments, nothing retained.
	require.Len(t, f.custody.Calls, 2)
	approve := f.custody.Calls[1]
	require.Equal(t, "approve", approve.Op)
	require.Equal(t, owner, approve.Recipient)
	require.Equal(t, 0, approve.Deposit.Cmp(deposit))
	require.Empty(t, f.bank.Payments)
}

func TestSettleRefundsEveryUnpaidLoserExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))

	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice"))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(11), protocol.NewAmount(11), "bob"))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "carol"))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(13), protocol.NewAmount(13), "dave"))

	// Bob resolves his bid early through the refund path; settlement
	// must then skip him.
	chain, err := f.engine.RefundBid(collection, tokenID, "bob")
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)

	f.clock.Advance(1000)
	chain, err = f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)

	// dave wins; owner paid once; alice and carol refunded once each in
	// admission order; bob only holds his early refund.
	require.Equal(t, []testutil.PaymentCall{
		{Recipient: "bob", Amount: protocol.NewAmount(11)}, // early refund
		{Recipient: owner, Amount: protocol.NewAmount(13)},
		{Recipient: "alice", Amount: protocol.NewAmount(10)},
		{Recipient: "carol", Amount: protocol.NewAmount(12)},
	}, f.bank.Payments)
	require.Equal(t, 1, f.bank.PaidTo("bob"))

	// Absent from all subsequent queries.
	require.Equal(t, 0, f.engine.Len())
	_, err = f.engine.Expired(collection, tokenID)
	require.ErrorIs(t, err, protocol.ErrNotInAuction)
}

func TestSettleFanOutSurvivesFailingLeg(t *testing.T) {
	// The owner payout failing must not cancel the loser refunds, and
	// the auction stays settled: no rollback, a permanent downstream
	// liability instead.
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))

	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice"))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(11), protocol.NewAmount(11), "bob"))

	f.bank.Errs[0] = context.DeadlineExceeded // owner payout leg fails

	f.clock.Advance(1000)
	chain, err := f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.NoError(t, err)
	outcomes := f.exec.Execute(context.Background(), chain)

	require.Error(t, outcomes[1].Err)  // owner payout
	require.NoError(t, outcomes[2].Err) // alice refund still issued
	require.Equal(t, 1, f.bank.PaidTo("alice"))
	require.Equal(t, 0, f.engine.Len())
}

func TestRefundBid(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))

	_, err := f.engine.RefundBid(collection, tokenID, "alice")
	require.ErrorIs(t, err, protocol.ErrNoBid)

	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice"))

	chain, err := f.engine.RefundBid(collection, tokenID, "alice")
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)
	require.Equal(t, []testutil.PaymentCall{{Recipient: "alice", Amount: protocol.NewAmount(10)}}, f.bank.Payments)

	// Second refund of the same bid must be refused.
	_, err = f.engine.RefundBid(collection, tokenID, "alice")
	require.ErrorIs(t, err, protocol.ErrAlreadyPaid)

	// A refunded bid still occupies the ledger slot: re-bidding is a
	// duplicate, the caller is pointed at updateBid.
	err = f.engine.MakeBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "alice")
	require.ErrorIs(t, err, protocol.ErrDuplicateBid)
}

func TestUpdateBidRefundsOldAndMovesToEnd(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))

	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice"))
	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(11), protocol.NewAmount(11), "bob"))

	_, err := f.engine.UpdateBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "carol")
	require.ErrorIs(t, err, protocol.ErrNoBid)

	// Alice raises her bid: old amount refunded, and she becomes the
	// most recently accepted bidder.
	chain, err := f.engine.UpdateBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "alice")
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)
	require.Equal(t, []testutil.PaymentCall{{Recipient: "alice", Amount: protocol.NewAmount(10)}}, f.bank.Payments)

	f.clock.Advance(1000)
	chain, err = f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)

	// Alice wins as last-inserted; bob is refunded.
	approve := f.custody.Calls[len(f.custody.Calls)-1]
	require.Equal(t, protocol.AccountID("alice"), approve.Recipient)
	require.Equal(t, 1, f.bank.PaidTo("bob"))
	// Alice's payments: one update refund only; her winning amount went
	// to the owner, exactly once.
	require.Equal(t, 1, f.bank.PaidTo("alice"))
	require.Equal(t, 1, f.bank.PaidTo(owner))
	require.Equal(t, owner, f.bank.Payments[1].Recipient)
	require.Equal(t, 0, f.bank.Payments[1].Amount.Cmp(protocol.NewAmount(12)))
}

func TestUpdateBidAfterRefundSkipsSecondRefund(t *testing.T) {
	f := newFixture(t)
	f.admit(t, 1000, protocol.NewAmount(5))

	require.NoError(t, f.engine.MakeBid(collection, tokenID, protocol.NewAmount(10), protocol.NewAmount(10), "alice"))

	chain, err := f.engine.RefundBid(collection, tokenID, "alice")
	require.NoError(t, err)
	f.exec.Execute(context.Background(), chain)

	// Updating a bid that was already refunded must not pay out again.
	chain, err = f.engine.UpdateBid(collection, tokenID, protocol.NewAmount(12), protocol.NewAmount(12), "alice")
	require.NoError(t, err)
	require.Equal(t, 0, chain.Len())
	require.Equal(t, 1, f.bank.PaidTo("alice"))
}

func TestExpiredQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Expired(collection, tokenID)
	require.ErrorIs(t, err, protocol.ErrNotInAuction)

	f.admit(t, 1000, protocol.NewAmount(5))

	expired, err := f.engine.Expired(collection, tokenID)
	require.NoError(t, err)
	require.False(t, expired)

	f.clock.Advance(999)
	expired, _ = f.engine.Expired(collection, tokenID)
	require.False(t, expired, "one nanosecond before expiry is still open")

	f.clock.Advance(1)
	expired, _ = f.engine.Expired(collection, tokenID)
	require.True(t, expired, "expiry instant itself counts as expired")
}

func TestCountTracksLiveAuctions(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, 0, f.engine.Len())

	f.admit(t, 1000, protocol.NewAmount(5))
	require.Equal(t, 1, f.engine.Len())

	f.clock.Advance(1000)
	chain, err := f.engine.EndAuction(collection, tokenID, protocol.Amount{})
	require.NoError(t, err)
	require.Equal(t, 0, f.engine.Len(), "count decreases by exactly one on settlement")
	f.exec.Execute(context.Background(), chain)
	require.Equal(t, 0, f.engine.Len())
}
