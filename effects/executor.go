package effects

import (
	"context"
	"log/slog"
)

// Outcome is the result of one executed leg.
type Outcome struct {
	Effect Effect
	Err    error
}

// Executor runs effect chains. Legs run sequentially in declaration
// order; a failing leg is recorded and execution continues with the next
// leg. There is no cancellation, retry or rollback once a chain has been
// handed to the executor.
type Executor struct {
	log *slog.Logger

	// OnOutcome, if set, observes every executed leg. Used by the
	// service layer for metrics.
	OnOutcome func(Outcome)
}

// NewExecutor creates an executor logging per-leg results to log.
func NewExecutor(log *slog.Logger) *Executor {
	return &Executor{log: log}
}

// Execute runs every leg of the chain and returns the per-leg outcomes.
// A nil or empty chain is a no-op.
func (x *Executor) Execute(ctx context.Context, chain *Chain) []Outcome {
	if chain.Len() == 0 {
		return nil
	}

	outcomes := make([]Outcome, 0, chain.Len())
	for _, leg := range chain.Legs() {
		err := leg.run(ctx)
		if err != nil {
			x.log.Error("effect failed", "effect", leg.Describe(), "err", err)
		} else {
			x.log.Info("effect executed", "effect", leg.Describe())
		}

		outcome := Outcome{Effect: leg, Err: err}
		outcomes = append(outcomes, outcome)
		if x.OnOutcome != nil {
			x.OnOutcome(outcome)
		}
	}
	return outcomes
}
