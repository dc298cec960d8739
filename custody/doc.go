// Package custody provides HTTP clients for the two external
// collaborators the auction service depends on: the asset custody
// registry (transfer and approve primitives) and the payment rail.
//
// The service only issues requests to these collaborators; it never
// implements their semantics and inherits whatever delivery guarantees
// they offer. Once a request is issued it cannot be cancelled, and
// timeouts are the collaborator's property, bounded here only by the
// shared HTTP client timeout.
package custody
