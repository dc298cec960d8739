// Package protocol defines the wire-level types shared by the auction
// engine, the HTTP service and its clients.
//
// The package covers four concerns:
//
//   - Identity: AccountID for participants and external services,
//     TokenID for tokens, and AssetKey, the fixed-width registry key
//     derived from a (collection, token) pair.
//   - Money: Amount, an arbitrary-precision non-negative monetary value
//     that serializes as a decimal string.
//   - Requests: the payload documents accepted by the service
//     (AuctionParams, BidRequest, SettleRequest, ...) and the Signed
//     envelope that authenticates them.
//   - Errors: the sentinel errors every operation reports its failures
//     with. Handlers map them to HTTP statuses with errors.Is.
//
// Asset keys are derived with a stable non-cryptographic 64-bit hash.
// Two distinct (collection, token) pairs may collide, in which case the
// registry cannot tell the two assets apart. This is an accepted risk,
// not a defended condition; callers needing stronger guarantees must
// retain the compound identity themselves.
package protocol
