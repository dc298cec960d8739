package protocol

import "errors"

// Sentinel errors reported by the auction engine. Every abort carries a
// human-readable reason; callers match with errors.Is.
var (
	// ErrMalformedRequest means the approval payload did not parse into
	// AuctionParams.
	ErrMalformedRequest = errors.New("invalid message")

	// ErrInvalidParameter means the requested auction duration was not
	// positive.
	ErrInvalidParameter = errors.New("duration must be greater than 0")

	// ErrArithmeticOverflow means adding the duration to the current
	// time exceeded the representable timestamp range. Fatal to the
	// whole admission; no auction is created.
	ErrArithmeticOverflow = errors.New("adding duration to current time overflowed, duration is too big")

	// ErrNotInAuction means no auction exists for the derived asset key.
	ErrNotInAuction = errors.New("this nft is not in auction")

	// ErrBidTooLow means the bid amount does not strictly exceed the
	// auction floor.
	ErrBidTooLow = errors.New("bid amount does not exceed previous bid or minimum bid amount")

	// ErrInsufficientDeposit means the attached funds do not cover the
	// bid amount.
	ErrInsufficientDeposit = errors.New("provided deposit does not cover bid amount")

	// ErrDuplicateBid means the bidder already holds an open bid in this
	// auction and must use the update or refund operations instead.
	ErrDuplicateBid = errors.New("bidder has already made a bid, either call refundBid or updateBid")

	// ErrAuctionExpired means the bid arrived at or after expiry.
	ErrAuctionExpired = errors.New("cannot bid, auction is over")

	// ErrAuctionStillOpen means settlement was requested before expiry.
	ErrAuctionStillOpen = errors.New("cannot end, auction is still ongoing")

	// ErrNoBid means the caller has no bid in this auction to update or
	// refund.
	ErrNoBid = errors.New("bidder has no open bid in this auction")

	// ErrAlreadyPaid means the bid was already resolved through another
	// path and must not be disbursed again.
	ErrAlreadyPaid = errors.New("bid has already been refunded")
)
