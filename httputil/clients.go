package httputil

import (
	"net/http"
	"time"
)

// Clients groups the outbound HTTP clients by concern so each call path
// carries its own timeout. Browser traffic is not here, that goes through
// the Playwright session.
type Clients struct {
	Extraction *http.Client // provider batch calls, slow by nature
	Geocoding  *http.Client // OneMap lookups, fail fast
}

func NewClients() *Clients {
	return &Clients{
		Extraction: &http.Client{Timeout: 90 * time.Second},
		Geocoding:  &http.Client{Timeout: 10 * time.Second},
	}
}
