package services

import (
	"log/slog"

	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/crypto"
	"github.com/bhavyakukkar/near-nft-auction-demo/effects"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

// HandlerConfig assembles an AuctionHandler's dependencies.
type HandlerConfig struct {
	// Log is the structured logger for request handling and effect
	// execution.
	Log *slog.Logger

	// Engine is the auction engine serving every operation.
	Engine *auction.Engine

	// Executor runs the effect chains returned by the engine.
	Executor *effects.Executor

	// CustodyKey is the custody registry's signing key. Approval
	// callbacks must be signed by it; anything else is rejected.
	CustodyKey crypto.PublicKey
}

// LegSummary describes one issued effect leg in API responses.
type LegSummary struct {
	Kind      effects.Kind       `json:"kind"`
	Recipient protocol.AccountID `json:"recipient"`
	Amount    protocol.Amount    `json:"amount"`
}

// ChainResponse reports the pending effects an operation issued. The
// legs have been handed to the executor but have not necessarily run,
// let alone succeeded.
type ChainResponse struct {
	Legs []LegSummary `json:"legs"`
}

// CountResponse is the live-auction count.
type CountResponse struct {
	Count int `json:"count"`
}

// ExpiredResponse reports whether an auction has passed its expiry.
type ExpiredResponse struct {
	Expired bool `json:"expired"`
}

func summarize(chain *effects.Chain) *ChainResponse {
	resp := &ChainResponse{Legs: make([]LegSummary, 0, chain.Len())}
	for _, leg := range chain.Legs() {
		resp.Legs = append(resp.Legs, LegSummary{
			Kind:      leg.Kind,
			Recipient: leg.Recipient,
			Amount:    leg.Amount,
		})
	}
	return resp
}
