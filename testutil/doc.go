/*
Package testutil provides testing utilities for the auction service.

It contains the shared test doubles used by the engine, effects and
service tests: a manually-advanced clock, capture implementations of the
custody and bank collaborators (with per-call error injection), and
helpers for building signed requests.

The doubles deliberately record every call in order. Settlement
correctness is about ordering and exactly-once disbursement, so tests
assert on the full recorded sequence rather than on call counts alone.
*/
package testutil
