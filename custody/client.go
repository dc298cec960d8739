package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

const defaultTimeout = 10 * time.Second

// TransferRequest is the custody registry's transfer payload.
type TransferRequest struct {
	Collection protocol.AccountID `json:"collection"`
	TokenID    protocol.TokenID   `json:"token_id"`
	Recipient  protocol.AccountID `json:"recipient"`
	ApprovalID uint64             `json:"approval_id"`
}

// ApproveRequest is the custody registry's approval payload.
type ApproveRequest struct {
	Collection protocol.AccountID `json:"collection"`
	TokenID    protocol.TokenID   `json:"token_id"`
	Recipient  protocol.AccountID `json:"recipient"`
	Deposit    protocol.Amount    `json:"deposit"`
}

// PayRequest is the payment rail's transfer payload.
type PayRequest struct {
	Recipient protocol.AccountID `json:"recipient"`
	Amount    protocol.Amount    `json:"amount"`
}

// HTTPCustody talks to the external custody registry over JSON HTTP.
// It implements effects.AssetCustody.
type HTTPCustody struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPCustody creates a custody client for the registry at baseURL.
func NewHTTPCustody(baseURL string) *HTTPCustody {
	return &HTTPCustody{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Transfer asks the registry to move a token to the recipient using the
// given approval.
func (c *HTTPCustody) Transfer(ctx context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, approvalID uint64) error {
	return postJSON(ctx, c.httpClient, c.baseURL+"/transfer", &TransferRequest{
		Collection: collection,
		TokenID:    tokenID,
		Recipient:  recipient,
		ApprovalID: approvalID,
	})
}

// Approve asks the registry to authorize the recipient for a token,
// forwarding the attached deposit.
func (c *HTTPCustody) Approve(ctx context.Context, collection protocol.AccountID, tokenID protocol.TokenID, recipient protocol.AccountID, deposit protocol.Amount) error {
	return postJSON(ctx, c.httpClient, c.baseURL+"/approve", &ApproveRequest{
		Collection: collection,
		TokenID:    tokenID,
		Recipient:  recipient,
		Deposit:    deposit,
	})
}

// HTTPBank talks to the external payment rail over JSON HTTP. It
// implements effects.Bank.
type HTTPBank struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBank creates a bank client for the rail at baseURL.
func NewHTTPBank(baseURL string) *HTTPBank {
	return &HTTPBank{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Pay transfers an amount to the recipient.
func (b *HTTPBank) Pay(ctx context.Context, recipient protocol.AccountID, amount protocol.Amount) error {
	return postJSON(ctx, b.httpClient, b.baseURL+"/pay", &PayRequest{
		Recipient: recipient,
		Amount:    amount,
	})
}

// postJSON sends a JSON POST request and treats any non-200 status as
// an error carrying the response body.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, string(respBody))
	}

	return nil
}
