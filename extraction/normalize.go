package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"commprop_intel/models"
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// normalizeItem converts a loosely typed provider item into the typed
// field set, applying the same validation rules to every strategy's
// output.
func normalizeItem(item ProviderItem) models.ExtractedFields {
	return models.ExtractedFields{
		PropertyName:      cleanString(item.PropertyName),
		Address:           cleanString(item.Address),
		PropertyType:      cleanString(item.PropertyType),
		PropertySubtype:   cleanString(item.PropertySubtype),
		TransactionType:   cleanString(item.TransactionType),
		Price:             toIntPtr(item.Price),
		PriceType:         cleanString(item.PriceType),
		GfaSqft:           toIntPtr(item.GfaSqft),
		LeaseType:         cleanString(item.LeaseType),
		LeaseBalanceYears: toIntPtr(item.LeaseBalanceYears),
		FloorLevel:        cleanString(item.FloorLevel),
		Features:          item.Features,
		ContactName:       cleanString(item.ContactName),
		ContactPhone:      NormalizePhone(item.ContactPhone),
		IsOwner:           toBool(item.IsOwner),
		IsAgent:           toBool(item.IsAgent),
		AgencyName:        cleanString(item.AgencyName),
		CobrokeAllowed:    item.CobrokeAllowed,
	}
}

// NormalizePhone strips a value to digits and keeps it only as a valid
// 8-digit local number starting with 6, 8 or 9.
func NormalizePhone(v interface{}) *string {
	var raw string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		raw = val
	case float64:
		raw = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		raw = fmt.Sprintf("%v", val)
	}

	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if len(digits) != 8 {
		return nil
	}
	switch digits[0] {
	case '6', '8', '9':
		return &digits
	}
	return nil
}

func toIntPtr(v interface{}) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		n := val
		return &n
	case float64:
		n := int(val)
		return &n
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		n := int(f)
		return &n
	}
	return nil
}

func toBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true") || strings.EqualFold(val, "yes")
	case float64:
		return val != 0
	}
	return false
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
