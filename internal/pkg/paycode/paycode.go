// Package paycode mints transaction codes and signs payment callbacks.
package paycode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomLen  = 6
	dateLayout = "20060102"
)

var (
	codePattern   = regexp.MustCompile(`^[A-Z0-9]+-\d{8}-[A-Z0-9]{6}$`)
	prefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,16}$`)
)

// NewCode returns <prefix>-<YYYYMMDD>-<6 random [A-Z0-9]>
func NewCode(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, randomLen)
	max := big.NewInt(int64(len(alphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format(dateLayout), suffix), nil
}

// ValidPrefix reports whether prefix can start a code Valid accepts
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// Valid reports whether code has the minted shape
func Valid(code string) bool {
	return codePattern.MatchString(code)
}

// CallbackMessage is the canonical signed string: code|amount|status
func CallbackMessage(code string, amount decimal.Decimal, status string) string {
	return strings.Join([]string{code, amount.StringFixed(0), strings.ToUpper(status)}, "|")
}

// Sign returns the hex HMAC-SHA256 of the callback message
func Sign(secret, code string, amount decimal.Decimal, status string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(CallbackMessage(code, amount, status)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature in constant time
func Verify(secret, code string, amount decimal.Decimal, status, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, code, amount, status)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
