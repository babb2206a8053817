package tenant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	cases := []struct {
		username string
		want     string
	}{
		{"maria", "tienda_maria"},
		{"Maria Lopez", "tienda_maria_lopez"},
		{"  Maria   Lopez  ", "tienda_maria_lopez"},
		{"María González", "tienda_maria_gonzalez"},
		{"jose.luis@tienda", "tienda_joseluistienda"},
		{"store_42", "tienda_store_42"},
		{"_ana_", "tienda_ana"},
	}
	for _, tc := range cases {
		got, err := DeriveKey(tc.username)
		require.NoError(t, err, tc.username)
		require.Equal(t, tc.want, got, tc.username)
	}
}

func TestDeriveKeyIsStable(t *testing.T) {
	first, err := DeriveKey("Maria Lopez")
	require.NoError(t, err)
	second, err := DeriveKey("maria lopez")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeriveKeyRejectsUnusableUsernames(t *testing.T) {
	for _, username := range []string{"", "   ", "!!!", "___", "@#$%"} {
		_, err := DeriveKey(username)
		require.ErrorIs(t, err, ErrUnusableUsername, "%q", username)
	}
}

func TestDeriveKeyTruncatesToIdentifierLimit(t *testing.T) {
	key, err := DeriveKey(strings.Repeat("a", 100))
	require.NoError(t, err)
	require.Len(t, key, 63)
	require.NoError(t, ValidateKey(key))
}

func TestValidateKey(t *testing.T) {
	require.NoError(t, ValidateKey("tienda_maria_lopez"))
	require.NoError(t, ValidateKey("tienda_store_42"))

	for _, key := range []string{
		"",
		"tienda_",
		"maria",
		"tienda_Maria",
		"tienda_maria lopez",
		`tienda_x"; DROP SCHEMA public; --`,
		"public",
		"pos_control",
	} {
		require.ErrorIs(t, ValidateKey(key), ErrInvalidKey, "%q", key)
	}
}
