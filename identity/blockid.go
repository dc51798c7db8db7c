package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// headLength is how many leading characters of a block's text participate
// in its identity. Two ads sharing the same first 100 characters on the
// same date collide; a retained ad re-scraped on a later date gets a new
// id. Both are accepted properties of the scheme.
const headLength = 100

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// IDFunc derives a block id from raw text and scrape date. The segmenter
// takes one of these so the scheme can be swapped without touching
// segmentation.
type IDFunc func(rawText, scrapeDate string) string

// BlockID is the default id scheme: sha256 over the first 100 normalized
// characters of the text joined with the scrape date, truncated to a
// 16-character hex token.
func BlockID(rawText, scrapeDate string) string {
	head := []rune(NormalizeText(rawText))
	if len(head) > headLength {
		head = head[:headLength]
	}
	hash := sha256.Sum256([]byte(string(head) + "_" + scrapeDate))
	return hex.EncodeToString(hash[:8])
}

// NormalizeText collapses whitespace runs to single spaces and trims.
func NormalizeText(text string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(text, " "))
}
