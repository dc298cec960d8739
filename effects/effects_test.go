package effects

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bhavyakukkar/near-nft-auction-demo/protocol"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&discardWriter{}, nil))
}

type discardWriter struct{}

func (*discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func legRecording(kind Kind, trace *[]string, name string, err error) Effect {
	return Effect{
		Kind: kind,
		run: func(context.Context) error {
			*trace = append(*trace, name)
			return err
		},
	}
}

func TestExecutorRunsLegsInOrder(t *testing.T) {
	var trace []string
	chain := NewChain(
		legRecording(AssetApprove, &trace, "approve", nil),
		legRecording(Payment, &trace, "pay-owner", nil),
	).Then(legRecording(Payment, &trace, "refund-1", nil))

	outcomes := NewExecutor(testLogger()).Execute(context.Background(), chain)

	require.Equal(t, []string{"approve", "pay-owner", "refund-1"}, trace)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
	}
}

func TestExecutorFailingLegDoesNotCancelDownstream(t *testing.T) {
	// A failing leg must not retry, roll back or cancel its siblings:
	// later refunds go out even when the owner payout failed.
	var trace []string
	payErr := errors.New("rail unavailable")
	chain := NewChain(
		legRecording(AssetApprove, &trace, "approve", nil),
		legRecording(Payment, &trace, "pay-owner", payErr),
		legRecording(Payment, &trace, "refund-1", nil),
		legRecording(Payment, &trace, "refund-2", nil),
	)

	outcomes := NewExecutor(testLogger()).Execute(context.Background(), chain)

	require.Equal(t, []string{"approve", "pay-owner", "refund-1", "refund-2"}, trace)
	require.NoError(t, outcomes[0].Err)
	require.ErrorIs(t, outcomes[1].Err, payErr)
	require.NoError(t, outcomes[2].Err)
	require.NoError(t, outcomes[3].Err)
}

func TestExecutorEmptyChain(t *testing.T) {
	x := NewExecutor(testLogger())
	require.Nil(t, x.Execute(context.Background(), nil))
	require.Nil(t, x.Execute(context.Background(), NewChain()))
}

func TestExecutorOnOutcomeHook(t *testing.T) {
	var seen []Outcome
	x := NewExecutor(testLogger())
	x.OnOutcome = func(o Outcome) { seen = append(seen, o) }

	var trace []string
	x.Execute(context.Background(), NewChain(
		legRecording(Payment, &trace, "a", nil),
		legRecording(Payment, &trace, "b", errors.New("boom")),
	))

	require.Len(t, seen, 2)
	require.NoError(t, seen[0].Err)
	require.Error(t, seen[1].Err)
}

func TestEffectDescribe(t *testing.T) {
	e := Effect{Kind: Payment, Recipient: protocol.AccountID("alice"), Amount: protocol.NewAmount(7)}
	require.Equal(t, "payment 7 -> alice", e.Describe())

	e = Effect{Kind: AssetTransfer, Recipient: protocol.AccountID("escrow")}
	require.Equal(t, "asset_transfer -> escrow", e.Describe())
}
