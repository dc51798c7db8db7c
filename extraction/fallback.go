package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"commprop_intel/models"
)

var (
	phoneRegex    = regexp.MustCompile(`([689]\d{7})`)
	millionRegex  = regexp.MustCompile(`(?i)\$?([\d,]+(?:\.\d+)?)\s*(?:M|mil|million)`)
	thousandRegex = regexp.MustCompile(`\$?([\d,]+(?:\.\d+)?)\s*[Kk]`)
	sqftRegex     = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sf|sqft|sq\s*ft)`)
	ownerRegex    = regexp.MustCompile(`(?i)\bowner\b|\bdirect\b`)
	agentRegex    = regexp.MustCompile(`(?i)propnex|\bera\b|orangetee|huttons|dennis wee`)
	nameRegex     = regexp.MustCompile(`^([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,3})`)
	saleRegex     = regexp.MustCompile(`(?i)\bsale\b`)
	rentRegex     = regexp.MustCompile(`(?i)\brent\b`)

	locationRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:at|@|near|opp|opposite)\s+([A-Za-z\s]+(?:MRT|Road|Ave|Street|Park|Hub|Centre|Center))`),
		regexp.MustCompile(`(?i)(Tuas|Ubi|Tai Seng|Mandai|Woodlands|Jurong|Changi|Paya Lebar|Geylang|Aljunied|Kallang)`),
	}
)

// FallbackExtract is the deterministic per-listing strategy used when the
// provider is unavailable or its output is unusable. Lower fidelity than
// the provider path, accepted as such.
func FallbackExtract(text, category string) models.ExtractedFields {
	f := models.ExtractedFields{Features: []string{}}

	if m := phoneRegex.FindStringSubmatch(text); m != nil {
		phone := m[1]
		f.ContactPhone = &phone
	}

	f.Price = extractPrice(text)

	if m := sqftRegex.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			f.GfaSqft = &n
		}
	}

	f.IsOwner = ownerRegex.MatchString(text)
	f.IsAgent = agentRegex.MatchString(text)

	if m := nameRegex.FindStringSubmatch(text); m != nil {
		name := m[1]
		f.PropertyName = &name
	}

	for _, re := range locationRegexes {
		if m := re.FindStringSubmatch(text); m != nil {
			addr := strings.TrimSpace(m[1])
			f.Address = &addr
			break
		}
	}

	propertyType := categoryPropertyType(category)
	f.PropertyType = &propertyType
	f.TransactionType = extractTransaction(text)

	return f
}

// extractPrice reads "$3.55M" style amounts as millions and "$14K" style
// amounts as thousands.
func extractPrice(text string) *int {
	if m := millionRegex.FindStringSubmatch(text); m != nil {
		if s := strings.ReplaceAll(m[1], ",", ""); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil
			}
			n := int(v * 1000000)
			return &n
		}
	}
	if m := thousandRegex.FindStringSubmatch(text); m != nil {
		if s := strings.ReplaceAll(m[1], ",", ""); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil
			}
			n := int(v * 1000)
			return &n
		}
	}
	return nil
}

func extractTransaction(text string) *string {
	if saleRegex.MatchString(text) {
		s := models.TransactionTypeSale
		return &s
	}
	if rentRegex.MatchString(text) {
		s := models.TransactionTypeRent
		return &s
	}
	return nil
}

func categoryPropertyType(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "factory"), strings.Contains(c, "warehouse"):
		return models.PropertyTypeFactory
	case strings.Contains(c, "office"):
		return models.PropertyTypeOffice
	case strings.Contains(c, "shop"):
		return models.PropertyTypeShop
	default:
		return models.PropertyTypeOther
	}
}
