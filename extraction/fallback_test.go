package extraction

import (
	"testing"
)

func TestFallbackExtract_EndToEnd(t *testing.T) {
	text := "UBI TECHPARK 3/STY B1 Park 4cars. 7858 sf $3.55M Ground flr. Price to sell. 98183835 Jean Lee"
	f := FallbackExtract(text, "")

	if f.Price == nil || *f.Price != 3550000 {
		t.Fatalf("expected price 3550000, got %v", f.Price)
	}
	if f.GfaSqft == nil || *f.GfaSqft != 7858 {
		t.Fatalf("expected gfa_sqft 7858, got %v", f.GfaSqft)
	}
	if f.ContactPhone == nil || *f.ContactPhone != "98183835" {
		t.Fatalf("expected contact_phone 98183835, got %v", f.ContactPhone)
	}
	if f.IsOwner {
		t.Fatal("expected is_owner false")
	}
	if f.IsAgent {
		t.Fatal("expected is_agent false")
	}
	if f.PropertyName == nil || *f.PropertyName != "UBI TECHPARK" {
		t.Fatalf("expected property name UBI TECHPARK, got %v", f.PropertyName)
	}
	if f.PropertyType == nil || *f.PropertyType != "Other" {
		t.Fatalf("expected property type Other for missing category, got %v", f.PropertyType)
	}
}

func TestFallbackExtract_PriceMillions(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"Freehold shophouse going at $3.55M negotiable", 3550000},
		{"Asking 1.2 mil, vacant possession", 1200000},
	}
	for _, c := range cases {
		f := FallbackExtract(c.text, "")
		if f.Price == nil || *f.Price != c.want {
			t.Errorf("%q: expected price %d, got %v", c.text, c.want, f.Price)
		}
	}
}

func TestFallbackExtract_PriceThousands(t *testing.T) {
	f := FallbackExtract("Office for rent $14K per month, call 81234567", "")
	if f.Price == nil || *f.Price != 14000 {
		t.Fatalf("expected price 14000, got %v", f.Price)
	}

	f = FallbackExtract("Shop unit at $550k", "")
	if f.Price == nil || *f.Price != 550000 {
		t.Fatalf("expected price 550000, got %v", f.Price)
	}
}

func TestFallbackExtract_NoPrice(t *testing.T) {
	f := FallbackExtract("Warehouse space available, contact 91234567", "")
	if f.Price != nil {
		t.Fatalf("expected nil price, got %d", *f.Price)
	}
}

func TestFallbackExtract_Phone(t *testing.T) {
	f := FallbackExtract("Call 98183835 for viewing", "")
	if f.ContactPhone == nil || *f.ContactPhone != "98183835" {
		t.Fatalf("expected phone 98183835, got %v", f.ContactPhone)
	}

	// 12345678 does not start with 6, 8 or 9.
	f = FallbackExtract("Call 12345678 for viewing", "")
	if f.ContactPhone != nil {
		t.Fatalf("expected no phone, got %v", *f.ContactPhone)
	}
}

func TestFallbackExtract_OwnerAgentFlags(t *testing.T) {
	f := FallbackExtract("Direct owner sale, no agent fees 91058518", "")
	if !f.IsOwner {
		t.Fatal("expected is_owner true for owner keyword")
	}

	f = FallbackExtract("Marketed by PropNex, call 81234567", "")
	if !f.IsAgent {
		t.Fatal("expected is_agent true for agency keyword")
	}

	f = FallbackExtract("Spacious B1 unit 2400 sqft 61234567", "")
	if f.IsOwner || f.IsAgent {
		t.Fatal("expected both flags false without keywords")
	}
}

func TestFallbackExtract_PropertyTypeFromCategory(t *testing.T) {
	cases := []struct {
		category string
		want     string
	}{
		{"Commercial/Industrial Properties - Factory/Warehouse Space - 1", "Factory/Warehouse"},
		{"Commercial/Industrial Properties - Office Space - 2", "Office"},
		{"Commercial/Industrial Properties - Shop Space - 3", "Shop"},
		{"Commercial/Industrial Properties - Land - 4", "Other"},
		{"", "Other"},
	}
	for _, c := range cases {
		f := FallbackExtract("unit for rent 91234567", c.category)
		if f.PropertyType == nil || *f.PropertyType != c.want {
			t.Errorf("category %q: expected %q, got %v", c.category, c.want, f.PropertyType)
		}
	}
}

func TestFallbackExtract_TransactionType(t *testing.T) {
	f := FallbackExtract("FOR SALE/ RENT. B1 Factory unit 91234567", "")
	if f.TransactionType == nil || *f.TransactionType != "Sale" {
		t.Fatalf("sale keyword should win, got %v", f.TransactionType)
	}

	f = FallbackExtract("Office for rent, immediate 61234567", "")
	if f.TransactionType == nil || *f.TransactionType != "Rent" {
		t.Fatalf("expected Rent, got %v", f.TransactionType)
	}

	f = FallbackExtract("Viewing by appointment 61234567", "")
	if f.TransactionType != nil {
		t.Fatalf("expected nil transaction type, got %v", *f.TransactionType)
	}
}

func TestFallbackExtract_Address(t *testing.T) {
	f := FallbackExtract("Ground floor unit near Aljunied MRT, 800 sf, 91234567", "")
	if f.Address == nil {
		t.Fatal("expected an address hint")
	}
	if *f.Address != "Aljunied MRT" {
		t.Fatalf("unexpected address %q", *f.Address)
	}

	f = FallbackExtract("B2 workshop in Woodlands 3200 sqft 81234567", "")
	if f.Address == nil || *f.Address != "Woodlands" {
		t.Fatalf("expected named-area fallback Woodlands, got %v", f.Address)
	}
}
