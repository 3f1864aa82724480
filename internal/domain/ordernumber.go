package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultOrderNumberPrefix is used when no prefix is configured
const DefaultOrderNumberPrefix = "MHH"

// NewOrderNumber builds "{prefix}-{epochMillis}-{5 base36 chars}"
func NewOrderNumber(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), randomBase36(5))
}

// NewPaymentReference builds the gateway reference for an order number.
// The reference is stored on the order at intake and looked up verbatim by the webhook.
func NewPaymentReference(orderNumber string, now time.Time) string {
	return fmt.Sprintf("%s-%d", orderNumber, now.UnixMilli())
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36Alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("read random: %v", err))
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non-alphanumerics into one dash
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
