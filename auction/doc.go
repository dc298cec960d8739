// Package auction implements the escrow auction engine: admission of
// assets into auction, the per-auction bid ledger, settlement with its
// payout fan-out, and the read-only queries.
//
// The engine owns all auction state behind a single mutex, so every
// public operation is atomic with respect to engine state. Operations
// that move money or assets do not perform the movement themselves; they
// validate, commit local state, and return an effects.Chain describing
// the outbound requests to issue. Settled auctions are removed before
// their chain executes, and nothing rolls local state back if a chain
// leg later fails.
package auction
