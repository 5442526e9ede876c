package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength = 40
	fallbackSlug  = "portfolio"
)

// GenerateUniqueIdentifier derives a URL-safe identifier for a portfolio in the
// format <slug>-<owner>-<random>, e.g. "jane-doe-1k-9f3a61c2".
//
// The result is unique with high probability only; the unique index on
// portfolios.unique_identifier is what actually guarantees uniqueness, and
// callers regenerate on a duplicate-key error.
func GenerateUniqueIdentifier(portfolioName string, ownerID uint64) (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s",
		Slugify(portfolioName),
		strconv.FormatUint(ownerID, 36),
		hex.EncodeToString(bytes),
	), nil
}

// Slugify folds name to lowercase ASCII, replaces every run of other
// characters with a single hyphen and caps the length.
func Slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}
