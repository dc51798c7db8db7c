package geocoding

import (
	"regexp"
	"strings"

	"commprop_intel/models"
)

// Layered mining patterns, most specific signal first. All run
// case-insensitively over the raw listing text.
var hintPatterns = []*regexp.Regexp{
	// building name: capitalized multi-word phrase at the start
	regexp.MustCompile(`(?i)^([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){1,3})`),
	// "@ location"
	regexp.MustCompile(`(?i)@\s*([A-Za-z][A-Za-z\s]+)`),
	// near/opposite a landmark
	regexp.MustCompile(`(?i)(?:near|opp|opposite|beside)\s+([A-Za-z][A-Za-z\s]+(?:MRT|Road|Ave|Street|Park|Hub|Centre|Center)?)`),
	// named areas that show up constantly in these ads
	regexp.MustCompile(`(?i)\b(Tuas|Ubi|Tai Seng|Mandai|Woodlands|Jurong|Changi|Paya Lebar|Geylang|Aljunied|Kallang|Bukit Batok|Ang Mo Kio|AMK|Tampines|Bedok|Sim Lim|Bendemeer|Macpherson)\b`),
	// industrial park naming convention
	regexp.MustCompile(`(?i)([A-Za-z]+\s*(?:Tech|Industrial|Biz|Business|Logistic|Enterprise)\s*(?:Park|Hub|Centre|Center|Link))`),
	// road names
	regexp.MustCompile(`(?i)([A-Za-z]+\s+(?:Road|Ave|Avenue|Street|Lane|Drive|Crescent|Way|Link)\s*\d*)`),
}

var hintStopwords = map[string]bool{
	"for":  true,
	"the":  true,
	"and":  true,
	"with": true,
}

const maxHints = 5

// LocationHints mines up to five candidate location terms out of raw
// listing text, deduplicated in discovery order.
func LocationHints(text string) []string {
	var hints []string
	seen := make(map[string]bool)
	for _, pattern := range hintPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			hint := strings.TrimSpace(m[1])
			if len(hint) <= 2 || hintStopwords[strings.ToLower(hint)] {
				continue
			}
			hint = strings.ReplaceAll(hint, "AMK", "Ang Mo Kio")
			if !seen[hint] {
				seen[hint] = true
				hints = append(hints, hint)
			}
		}
	}
	if len(hints) > maxHints {
		hints = hints[:maxHints]
	}
	return hints
}

// CandidateTerms orders the geocoding attempts for one listing: property
// name first, then address, then mined hints.
func CandidateTerms(fields *models.ExtractedFields, rawText string) []string {
	var terms []string
	if fields != nil {
		if fields.PropertyName != nil {
			terms = append(terms, *fields.PropertyName)
		}
		if fields.Address != nil {
			terms = append(terms, *fields.Address)
		}
	}
	return append(terms, LocationHints(rawText)...)
}
