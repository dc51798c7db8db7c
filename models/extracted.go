package models

// ExtractedFields holds the structured attributes pulled out of one listing
// block. Every field is independently optional; a nil pointer means the
// extractor could not determine the value, which is a normal outcome for
// this kind of free-text input.
type ExtractedFields struct {
	PropertyName      *string  `json:"property_name"`
	Address           *string  `json:"address"`
	PropertyType      *string  `json:"property_type"`
	PropertySubtype   *string  `json:"property_subtype"`
	TransactionType   *string  `json:"transaction_type"`
	Price             *int     `json:"price"`
	PriceType         *string  `json:"price_type"`
	GfaSqft           *int     `json:"gfa_sqft"`
	LeaseType         *string  `json:"lease_type"`
	LeaseBalanceYears *int     `json:"lease_balance_years"`
	FloorLevel        *string  `json:"floor_level"`
	Features          []string `json:"features,omitempty"`
	ContactName       *string  `json:"contact_name"`
	ContactPhone      *string  `json:"contact_phone"`
	IsOwner           bool     `json:"is_owner"`
	IsAgent           bool     `json:"is_agent"`
	AgencyName        *string  `json:"agency_name"`
	CobrokeAllowed    *bool    `json:"cobroke_allowed"`
}

const (
	PropertyTypeFactory = "Factory/Warehouse"
	PropertyTypeOffice  = "Office"
	PropertyTypeShop    = "Shop"
	PropertyTypeMixed   = "Mixed"
	PropertyTypeOther   = "Other"
	TransactionTypeSale = "Sale"
	TransactionTypeRent = "Rent"
	TransactionTypeBoth = "Both"
)
