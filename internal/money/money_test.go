package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"0", 0},
		{"18", 1800},
		{"18.5", 1850},
		{"18.50", 1850},
		{"45.50", 4550},
		{"169.00", 16900},
		{"-3.25", -325},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRejectsSubCentPrecision(t *testing.T) {
	_, err := Parse("18.505")
	require.ErrorIs(t, err, ErrTooPrecise)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("eighteen")
	require.Error(t, err)
}

func TestMulAndString(t *testing.T) {
	price, err := Parse("45.50")
	require.NoError(t, err)
	require.Equal(t, "91.00", price.Mul(2).String())
	require.Equal(t, "0.00", Cents(0).String())
}

func TestLineTotalsAddUpExactly(t *testing.T) {
	// 2 x 45.50 + 1 x 78.00 must be exactly 169.00, never 168.99...
	a, _ := Parse("45.50")
	b, _ := Parse("78.00")
	total := a.Mul(2) + b.Mul(1)
	require.Equal(t, "169.00", total.String())
}

func TestJSONRoundTrip(t *testing.T) {
	price, err := Parse("18.50")
	require.NoError(t, err)

	raw, err := json.Marshal(price)
	require.NoError(t, err)
	require.Equal(t, "18.50", string(raw))

	var back Cents
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, price, back)
}

func TestUnmarshalAcceptsNumberAndString(t *testing.T) {
	for _, raw := range []string{"18", "18.5", `"18.50"`} {
		var c Cents
		require.NoError(t, json.Unmarshal([]byte(raw), &c), raw)
		if raw == "18" {
			require.Equal(t, Cents(1800), c)
		} else {
			require.Equal(t, Cents(1850), c)
		}
	}
}

func TestUnmarshalRejectsSubCent(t *testing.T) {
	var c Cents
	require.ErrorIs(t, json.Unmarshal([]byte("18.505"), &c), ErrTooPrecise)
}
