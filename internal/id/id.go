package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise-dev/spendwise/internal/normalize"
)

// FingerprintInput returns the string hashed by Fingerprint:
// "2024-03-01|Whole Foods|-23.45|1".
func FingerprintInput(date time.Time, description string, amount decimal.Decimal, seq int) string {
	return fmt.Sprintf("%s|%s|%s|%d", date.Format("2006-01-02"), strings.TrimSpace(description), normalize.PlainString(amount), seq)
}

// Fingerprint identifies a statement row within one import. seq is the
// 1-based position of the row in the file, so the same line imported twice
// gets two different fingerprints; it addresses overrides and exclusions,
// it does not de-duplicate.
func Fingerprint(date time.Time, description string, amount decimal.Decimal, seq int) string {
	sum := sha256.Sum256([]byte(FingerprintInput(date, description, amount, seq)))
	return hex.EncodeToString(sum[:])
}

// IsFingerprint reports whether s looks like a value produced by Fingerprint.
func IsFingerprint(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil && strings.ToLower(s) == s
}
