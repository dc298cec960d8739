package protocol

// AccountID identifies a participant or an external service account.
// For participants authenticated over HTTP it is the hex encoding of
// their Ed25519 public key; for external collaborators it is whatever
// name the collaborator registered under.
type AccountID string

// TokenID identifies a single token within a collection.
type TokenID string

// AuctionParams is the opaque payload attached to a custody approval
// callback. It carries everything the custodian chooses about the
// auction being opened.
type AuctionParams struct {
	// Duration is the auction window in nanoseconds, added once to the
	// admission timestamp. Must be positive.
	Duration uint64 `json:"duration"`

	// Floor is the minimum acceptable bid. Bids must strictly exceed it.
	Floor Amount `json:"floor"`
}

// OnApproveRequest is the custody protocol's approval callback: the
// custody registry notifies the service that it may take the token into
// escrow using the given approval id.
type OnApproveRequest struct {
	Collection AccountID `json:"collection"`
	TokenID    TokenID   `json:"token_id"`
	Owner      AccountID `json:"owner"`
	ApprovalID uint64    `json:"approval_id"`
	// Msg is the raw JSON-encoded AuctionParams chosen by the custodian.
	Msg string `json:"msg"`
}

// BidRequest places a bid on a live auction. The bidder's identity is
// the signer of the enclosing envelope, never a request field.
type BidRequest struct {
	Collection AccountID `json:"collection"`
	TokenID    TokenID   `json:"token_id"`
	Amount     Amount    `json:"amount"`
	// Deposit is the funds attached to the request; it must cover Amount.
	Deposit Amount `json:"deposit"`
}

// SettleRequest closes an expired auction. Any caller may settle; the
// attached deposit is passed through to the custody approval when the
// auction closes without bids.
type SettleRequest struct {
	Collection AccountID `json:"collection"`
	TokenID    TokenID   `json:"token_id"`
	Deposit    Amount    `json:"deposit"`
}

// RefundRequest resolves the signer's own bid outside settlement,
// marking it paid and refunding its amount.
type RefundRequest struct {
	Collection AccountID `json:"collection"`
	TokenID    TokenID   `json:"token_id"`
}
