// Package effects models the outbound side effects of an auction
// operation as an explicit, ordered chain of pending actions.
//
// An engine invocation commits its local state and returns a Chain; at
// that point nothing external has happened yet. An Executor later runs
// the chain leg by leg. Legs are issued strictly in order, but each leg
// succeeds or fails independently: a failing leg is never retried, never
// rolled back, and never cancels the legs after it. Combined with the
// engine deleting settled auctions before the chain runs, this keeps the
// system's deliberate non-atomicity visible and testable instead of
// hiding it behind blocking calls.
package effects
