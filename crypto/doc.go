// Package crypto provides the key and signature types used to
// authenticate requests to the auction service.
//
// The package wraps Ed25519: participants sign their requests with a
// PrivateKey, and the service recovers the signer's PublicKey, which
// doubles as the participant's account identity. All types include
// helper methods for serialization and comparison.
package crypto
