package tenant

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeyPrefix namespaces every tenant schema.
const KeyPrefix = "tienda_"

// Postgres identifiers are capped at 63 bytes.
const maxKeyLen = 63

var keyPattern = regexp.MustCompile(`^tienda_[a-z0-9_]+$`)

// ErrInvalidKey indicates a tenant key that does not match the derived form.
var ErrInvalidKey = errors.New("tenant: invalid tenant key")

// ErrUnusableUsername indicates a username with no usable characters.
var ErrUnusableUsername = errors.New("tenant: username yields an empty tenant key")

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveKey maps a username to its tenant key: lowercase, accents
// stripped, whitespace collapsed to underscores, anything outside
// [a-z0-9_] dropped, prefixed with the tenant namespace. The mapping
// is a pure function of the username and is recomputed rather than
// stored redundantly.
func DeriveKey(username string) (string, error) {
	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		}
	}

	body := strings.Trim(b.String(), "_")
	if body == "" {
		return "", ErrUnusableUsername
	}

	key := KeyPrefix + body
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	return key, nil
}

// ValidateKey rejects anything that is not a derived tenant key.
// Every schema-qualified query relies on this.
func ValidateKey(key string) error {
	if len(key) > maxKeyLen || !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
