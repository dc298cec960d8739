package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bhavyakukkar/near-nft-auction-demo/auction"
	"github.com/bhavyakukkar/near-nft-auction-demo/crypto"
	"github.com/bhavyakukkar/near-nft-auction-demo/effects"
	"github.com/bhavyakukkar/near-nft-auction-demo/metrics"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
	"github.com/go-chi/chi/v5"
)

// AuctionHandler exposes the auction engine over HTTP.
type AuctionHandler struct {
	log        *slog.Logger
	engine     *auction.Engine
	executor   *effects.Executor
	custodyKey crypto.PublicKey
}

// NewAuctionHandler creates the handler and hooks executor outcomes
// into metrics.
func NewAuctionHandler(cfg *HandlerConfig) *AuctionHandler {
	cfg.Executor.OnOutcome = func(o effects.Outcome) {
		metrics.IncEffectExecuted(o.Err != nil)
	}
	return &AuctionHandler{
		log:        cfg.Log,
		engine:     cfg.Engine,
		executor:   cfg.Executor,
		custodyKey: cfg.CustodyKey,
	}
}

// RegisterRoutes registers the public API. Admission finalization is
// intentionally absent: it is not an HTTP operation.
func (h *AuctionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/nft/on-approve", h.handleOnApprove)
	r.Post("/auctions/bid", h.handleBid)
	r.Post("/auctions/update-bid", h.handleUpdateBid)
	r.Post("/auctions/refund-bid", h.handleRefundBid)
	r.Post("/auctions/settle", h.handleSettle)
	r.Get("/auctions/count", h.handleCount)
	r.Get("/auctions/expired", h.handleExpired)
}

func (h *AuctionHandler) handleOnApprove(w http.ResponseWriter, req *http.Request) {
	signed, err := protocol.DecodeMessage[protocol.Signed[protocol.OnApproveRequest]](req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	approval, signer, err := signed.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}
	if !signer.Equal(h.custodyKey) {
		http.Error(w, "approval callback not signed by the custody registry", http.StatusForbidden)
		return
	}

	chain, err := h.engine.OnApprove(approval)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	metrics.IncAuctionsStarted()
	h.dispatch(chain)
	writeJSON(w, summarize(chain))
}

func (h *AuctionHandler) handleBid(w http.ResponseWriter, req *http.Request) {
	bid, bidder, ok := recoverSigned[protocol.BidRequest](w, req)
	if !ok {
		return
	}

	if err := h.engine.MakeBid(bid.Collection, bid.TokenID, bid.Amount, bid.Deposit, bidder); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	metrics.IncBidsAccepted()
	w.WriteHeader(http.StatusOK)
}

func (h *AuctionHandler) handleUpdateBid(w http.ResponseWriter, req *http.Request) {
	bid, bidder, ok := recoverSigned[protocol.BidRequest](w, req)
	if !ok {
		return
	}

	chain, err := h.engine.UpdateBid(bid.Collection, bid.TokenID, bid.Amount, bid.Deposit, bidder)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	h.dispatch(chain)
	writeJSON(w, summarize(chain))
}

func (h *AuctionHandler) handleRefundBid(w http.ResponseWriter, req *http.Request) {
	refund, bidder, ok := recoverSigned[protocol.RefundRequest](w, req)
	if !ok {
		return
	}

	chain, err := h.engine.RefundBid(refund.Collection, refund.TokenID, bidder)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	h.dispatch(chain)
	writeJSON(w, summarize(chain))
}

func (h *AuctionHandler) handleSettle(w http.ResponseWriter, req *http.Request) {
	// Anyone may settle; the signature only authenticates the deposit
	// attribution.
	settle, _, ok := recoverSigned[protocol.SettleRequest](w, req)
	if !ok {
		return
	}

	chain, err := h.engine.EndAuction(settle.Collection, settle.TokenID, settle.Deposit)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	metrics.IncAuctionsSettled()
	h.dispatch(chain)
	writeJSON(w, summarize(chain))
}

func (h *AuctionHandler) handleCount(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, &CountResponse{Count: h.engine.Len()})
}

func (h *AuctionHandler) handleExpired(w http.ResponseWriter, req *http.Request) {
	collection := protocol.AccountID(req.URL.Query().Get("collection"))
	tokenID := protocol.TokenID(req.URL.Query().Get("token_id"))

	expired, err := h.engine.Expired(collection, tokenID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, &ExpiredResponse{Expired: expired})
}

// dispatch hands a chain to the executor in the background. The request
// that produced it has already committed its local state.
func (h *AuctionHandler) dispatch(chain *effects.Chain) {
	if chain.Len() == 0 {
		return
	}
	go h.executor.Execute(context.Background(), chain)
}

// recoverSigned decodes a signed envelope and authenticates its signer,
// writing the failure response itself. The recovered signer's key, hex
// encoded, is the participant identity handed to the engine.
func recoverSigned[T any](w http.ResponseWriter, req *http.Request) (*T, protocol.AccountID, bool) {
	signed, err := protocol.DecodeMessage[protocol.Signed[T]](req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	obj, signer, err := signed.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return nil, "", false
	}

	return obj, protocol.AccountID(signer.String()), true
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, protocol.ErrNotInAuction):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrDuplicateBid),
		errors.Is(err, protocol.ErrAlreadyPaid),
		errors.Is(err, protocol.ErrAuctionStillOpen),
		errors.Is(err, protocol.ErrAuctionExpired):
		return http.StatusConflict
	case errors.Is(err, protocol.ErrMalformedRequest),
		errors.Is(err, protocol.ErrInvalidParameter),
		errors.Is(err, protocol.ErrArithmeticOverflow),
		errors.Is(err, protocol.ErrBidTooLow),
		errors.Is(err, protocol.ErrInsufficientDeposit),
		errors.Is(err, protocol.ErrNoBid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
