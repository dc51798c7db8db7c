package scraper

import (
	"regexp"
	"strings"

	"commprop_intel/identity"
	"commprop_intel/models"
)

const (
	minBlockLength      = 30
	maxBlockLength      = 500
	minFallbackBodyRune = 50

	categoryPrefix = "Commercial/Industrial Properties - "
)

var (
	// The site renders the section header with inconsistent spacing around
	// the slash, so the marker patterns tolerate both.
	categoryMarkerRegex = regexp.MustCompile(`(?i)Commercial[/\s]*Industrial\s*Properties`)
	categoryStartRegex  = regexp.MustCompile(`(?i)Commercial[/\s]*Industrial`)
	subcategoryRegex    = regexp.MustCompile(`(?i)[A-Za-z/\s]+Space\s*-\s*\d+`)

	validPhoneRegex  = regexp.MustCompile(`[689]\d{7}`)
	phoneWindowRegex = regexp.MustCompile(`(?s)(.{50,300}?)(\d{8})(.{0,100})`)
	fallbackKeywords = []string{"sqft", "sf", "rent", "sale", "factory", "warehouse", "office", "shop"}
)

// Segmenter turns one date's flattened page text into candidate listing
// blocks with content-addressed ids.
type Segmenter struct {
	idFn identity.IDFunc
}

// NewSegmenter builds a segmenter. A nil idFn uses the default
// content-hash scheme.
func NewSegmenter(idFn identity.IDFunc) *Segmenter {
	if idFn == nil {
		idFn = identity.BlockID
	}
	return &Segmenter{idFn: idFn}
}

// SegmentMarkup flattens raw page markup and segments it. An empty result
// is a valid "no listings this date", not an error.
func (s *Segmenter) SegmentMarkup(markup, scrapeDate string) ([]models.RawListingBlock, error) {
	text, err := FlattenMarkup(markup)
	if err != nil {
		return nil, err
	}
	return s.Segment(text, scrapeDate), nil
}

// Segment runs the category-marker algorithm and, when that yields fewer
// than two blocks, supplements it with the phone-window scan.
func (s *Segmenter) Segment(text, scrapeDate string) []models.RawListingBlock {
	blocks := s.segmentByCategory(text, scrapeDate)
	if len(blocks) < 2 {
		blocks = s.segmentByPhoneWindow(text, scrapeDate, blocks)
	}
	return blocks
}

// segmentByCategory splits on the recurring section header, then inside
// each chunk locates the "subcategory - number" marker and takes the text
// after it, up to the next section header, as one listing body.
func (s *Segmenter) segmentByCategory(text, scrapeDate string) []models.RawListingBlock {
	var blocks []models.RawListingBlock

	markers := categoryMarkerRegex.FindAllStringIndex(text, -1)
	for i, m := range markers {
		chunkEnd := len(text)
		if i+1 < len(markers) {
			chunkEnd = markers[i+1][0]
		}
		chunk := text[m[1]:chunkEnd]

		loc := subcategoryRegex.FindStringIndex(chunk)
		if loc == nil {
			continue
		}
		subcategory := strings.TrimSpace(chunk[loc[0]:loc[1]])

		body := chunk[loc[1]:]
		if cut := categoryStartRegex.FindStringIndex(body); cut != nil {
			body = body[:cut[0]]
		}

		block, ok := s.newBlock(body, categoryPrefix+subcategory, scrapeDate)
		if !ok {
			continue
		}
		blocks = append(blocks, block)
	}

	return blocks
}

// segmentByPhoneWindow scans for 8-digit runs and treats the surrounding
// window as a candidate body. Candidates without any listing keyword are
// dropped, and duplicates of already collected ids are skipped.
func (s *Segmenter) segmentByPhoneWindow(text, scrapeDate string, blocks []models.RawListingBlock) []models.RawListingBlock {
	seen := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		seen[b.ID] = true
	}

	for _, m := range phoneWindowRegex.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1]) + " " + m[2] + " " + strings.TrimSpace(m[3])
		body = identity.NormalizeText(body)
		if len([]rune(body)) < minFallbackBodyRune {
			continue
		}
		if !containsKeyword(body) {
			continue
		}

		block, ok := s.newBlock(body, "", scrapeDate)
		if !ok || seen[block.ID] {
			continue
		}
		seen[block.ID] = true
		blocks = append(blocks, block)
	}

	return blocks
}

// newBlock normalizes and validates a candidate body. Every emitted block
// has at least 30 characters and a phone-shaped 8-digit run starting with
// 6, 8 or 9. Bodies are truncated to 500 characters before hashing so the
// id and the stored text agree.
func (s *Segmenter) newBlock(body, category, scrapeDate string) (models.RawListingBlock, bool) {
	body = identity.NormalizeText(body)

	runes := []rune(body)
	if len(runes) < minBlockLength {
		return models.RawListingBlock{}, false
	}
	if len(runes) > maxBlockLength {
		body = string(runes[:maxBlockLength])
	}
	if !validPhoneRegex.MatchString(body) {
		return models.RawListingBlock{}, false
	}

	return models.RawListingBlock{
		ID:         s.idFn(body, scrapeDate),
		RawText:    body,
		Category:   category,
		ScrapeDate: scrapeDate,
	}, true
}

func containsKeyword(body string) bool {
	lower := strings.ToLower(body)
	for _, kw := range fallbackKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
