// Command auction-cli provides CLI tools for interacting with a running
// auction service.
//
// # Commands
//
// bid: Place a bid on an NFT in auction.
//
//	auction-cli bid -u http://localhost:8080 -c nft.example.near -t token-1 -a 150 -d 150
//
// update-bid: Replace an open bid with a new amount.
//
// refund-bid: Withdraw an open bid and reclaim its funds.
//
// settle: Settle an expired auction (anyone may call this).
//
// count / expired: Query live-auction state.
//
// start: Emit a custody approval callback, standing in for the NFT
// registry during local development. Requires the custody signing key
// the service was configured with.
//
//	auction-cli start -u http://localhost:8080 -k <hex key> -c nft.example.near -t token-1 --duration 60000000000 --floor 100
//
// Keys are Ed25519; the signer's public key is the bidder identity. An
// empty -k generates a throwaway key, which is only useful for bids you
// never intend to update or refund.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bhavyakukkar/near-nft-auction-demo/cmd/common"
	"github.com/bhavyakukkar/near-nft-auction-demo/crypto"
	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "start":
		err = runStart(args)
	case "bid":
		err = runBid(args, "/auctions/bid")
	case "update-bid":
		err = runBid(args, "/auctions/update-bid")
	case "refund-bid":
		err = runRefund(args)
	case "settle":
		err = runSettle(args)
	case "count":
		err = runCount(args)
	case "expired":
		err = runExpired(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: auction-cli <command> [flags]

Commands:
  start        Emit a custody approval callback (local development)
  bid          Place a bid
  update-bid   Replace an open bid
  refund-bid   Withdraw an open bid
  settle       Settle an expired auction
  count        Show the live-auction count
  expired      Check whether an auction has expired

Run 'auction-cli <command> -h' for command flags.`)
}

// assetFlags registers the flags every asset-scoped command shares.
func assetFlags(fs *flag.FlagSet) (url, key, collection, token *string) {
	url = fs.String("u", "http://localhost:8080", "auction service URL")
	key = fs.String("k", "", "Ed25519 signing key (hex, generates if empty)")
	collection = fs.String("c", "", "NFT collection account")
	token = fs.String("t", "", "token ID within the collection")
	return
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	url, key, collection, token := assetFlags(fs)
	owner := fs.String("owner", "", "asset owner account")
	approvalID := fs.Uint64("approval-id", 0, "custody approval id")
	duration := fs.Uint64("duration", 0, "auction duration in nanoseconds")
	floor := fs.String("floor", "0", "minimum bid amount")
	fs.Parse(args)

	if *collection == "" || *token == "" || *owner == "" {
		return fmt.Errorf("-c, -t and --owner are required")
	}
	floorAmount, err := protocol.ParseAmount(*floor)
	if err != nil {
		return fmt.Errorf("invalid floor: %w", err)
	}

	priv, err := common.LoadOrGenerateSigningKey(*key)
	if err != nil {
		return err
	}

	msg, err := json.Marshal(protocol.AuctionParams{Duration: *duration, Floor: floorAmount})
	if err != nil {
		return err
	}

	return postSigned(*url, "/nft/on-approve", priv, &protocol.OnApproveRequest{
		Collection: protocol.AccountID(*collection),
		TokenID:    protocol.TokenID(*token),
		Owner:      protocol.AccountID(*owner),
		ApprovalID: *approvalID,
		Msg:        string(msg),
	})
}

func runBid(args []string, path string) error {
	fs := flag.NewFlagSet("bid", flag.ExitOnError)
	url, key, collection, token := assetFlags(fs)
	amount := fs.String("a", "", "bid amount")
	deposit := fs.String("d", "", "attached deposit (defaults to the bid amount)")
	fs.Parse(args)

	if *collection == "" || *token == "" || *amount == "" {
		return fmt.Errorf("-c, -t and -a are required")
	}
	bidAmount, err := protocol.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	depositAmount := bidAmount
	if *deposit != "" {
		if depositAmount, err = protocol.ParseAmount(*deposit); err != nil {
			return fmt.Errorf("invalid deposit: %w", err)
		}
	}

	priv, err := signerKey(*key)
	if err != nil {
		return err
	}

	return postSigned(*url, path, priv, &protocol.BidRequest{
		Collection: protocol.AccountID(*collection),
		TokenID:    protocol.TokenID(*token),
		Amount:     bidAmount,
		Deposit:    depositAmount,
	})
}

func runRefund(args []string) error {
	fs := flag.NewFlagSet("refund-bid", flag.ExitOnError)
	url, key, collection, token := assetFlags(fs)
	fs.Parse(args)

	if *collection == "" || *token == "" {
		return fmt.Errorf("-c and -t are required")
	}
	priv, err := signerKey(*key)
	if err != nil {
		return err
	}

	return postSigned(*url, "/auctions/refund-bid", priv, &protocol.RefundRequest{
		Collection: protocol.AccountID(*collection),
		TokenID:    protocol.TokenID(*token),
	})
}

func runSettle(args []string) error {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	url, key, collection, token := assetFlags(fs)
	deposit := fs.String("d", "0", "attached deposit, passed through on a zero-bid settle")
	fs.Parse(args)

	if *collection == "" || *token == "" {
		return fmt.Errorf("-c and -t are required")
	}
	depositAmount, err := protocol.ParseAmount(*deposit)
	if err != nil {
		return fmt.Errorf("invalid deposit: %w", err)
	}
	priv, err := signerKey(*key)
	if err != nil {
		return err
	}

	return postSigned(*url, "/auctions/settle", priv, &protocol.SettleRequest{
		Collection: protocol.AccountID(*collection),
		TokenID:    protocol.TokenID(*token),
		Deposit:    depositAmount,
	})
}

func runCount(args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	url := fs.String("u", "http://localhost:8080", "auction service URL")
	fs.Parse(args)

	return getJSON(*url + "/auctions/count")
}

func runExpired(args []string) error {
	fs := flag.NewFlagSet("expired", flag.ExitOnError)
	url := fs.String("u", "http://localhost:8080", "auction service URL")
	collection := fs.String("c", "", "NFT collection account")
	token := fs.String("t", "", "token ID within the collection")
	fs.Parse(args)

	if *collection == "" || *token == "" {
		return fmt.Errorf("-c and -t are required")
	}
	return getJSON(fmt.Sprintf("%s/auctions/expired?collection=%s&token_id=%s", *url, *collection, *token))
}

// signerKey loads the caller's key, printing the derived identity so
// repeat calls can reuse it.
func signerKey(hexKey string) (crypto.PrivateKey, error) {
	priv, err := common.LoadOrGenerateSigningKey(hexKey)
	if err != nil {
		return nil, err
	}
	pub, err := priv.PublicKey()
	if err != nil {
		return nil, err
	}
	fmt.Printf("Signing as: %s\n", pub.String())
	return priv, nil
}

func postSigned[T any](serviceURL, path string, priv crypto.PrivateKey, obj *T) error {
	signed, err := protocol.NewSigned(priv, obj)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	body, err := json.Marshal(signed)
	if err != nil {
		return err
	}

	resp, err := http.Post(serviceURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func getJSON(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}
	if len(bytes.TrimSpace(payload)) > 0 {
		fmt.Println(string(bytes.TrimSpace(payload)))
	} else {
		fmt.Println("ok")
	}
	return nil
}
