// Package services wires the auction engine to its HTTP surface and its
// persistence backends.
//
// AuctionHandler registers the public routes: the custody protocol's
// approval callback, the bid/update/refund/settle operations, and the
// read-only queries. Requests that act on behalf of a participant are
// Ed25519-signed envelopes; the recovered signer is the participant's
// identity. The privileged admission-finalization step is deliberately
// not a route: it exists only inside the effect chains the engine
// returns, so no external caller can forge a custody confirmation.
//
// Effect chains returned by the engine are executed in the background;
// the HTTP response only reports which legs were issued. A leg failing
// later is logged and counted, never rolled back.
package services
