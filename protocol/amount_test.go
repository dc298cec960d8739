package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountCompare(t *testing.T) {
	low := NewAmount(10)
	high := NewAmount(20)

	require.Equal(t, -1, low.Cmp(high))
	require.Equal(t, 1, high.Cmp(low))
	require.Equal(t, 0, low.Cmp(NewAmount(10)))
	require.True(t, Amount{}.IsZero())
	require.False(t, low.IsZero())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "0", want: "0"},
		{input: "1000000000000000000000000", want: "1000000000000000000000000"}, // exceeds uint64
		{input: "-5", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range tests {
		a, err := ParseAmount(tc.input)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.want, a.String())
	}
}

func TestAmountJSON(t *testing.T) {
	a, err := ParseAmount("340282366920938463463374607431768211455")
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `"340282366920938463463374607431768211455"`, string(data))

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, 0, a.Cmp(back))

	// Bare JSON numbers are rejected: precision would silently be lost.
	require.Error(t, json.Unmarshal([]byte(`12345`), &back))
}

func TestAmountAdd(t *testing.T) {
	sum := NewAmount(7).Add(NewAmount(5))
	require.Equal(t, "12", sum.String())

	// Add must not alias its operands.
	a := NewAmount(1)
	_ = a.Add(NewAmount(2))
	require.Equal(t, "1", a.String())
}
