package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const onemapSearchURL = "https://www.onemap.gov.sg/api/common/elastic/search"

// OneMapClient queries Singapore's OneMap elastic search API for the best
// single match of a free-text term.
type OneMapClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewOneMapClient(httpClient *http.Client) *OneMapClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OneMapClient{
		httpClient: httpClient,
		baseURL:    onemapSearchURL,
	}
}

type onemapResponse struct {
	Found   int `json:"found"`
	Results []struct {
		Latitude  string `json:"LATITUDE"`
		Longitude string `json:"LONGITUDE"`
	} `json:"results"`
}

// Geocode returns the top match for a query, or nil when the API has no
// usable result.
func (c *OneMapClient) Geocode(ctx context.Context, query string) (*Point, error) {
	params := url.Values{}
	params.Set("searchVal", query)
	params.Set("returnGeom", "Y")
	params.Set("getAddrDetails", "Y")
	params.Set("pageNum", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build onemap request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onemap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("onemap returned status %d", resp.StatusCode)
	}

	var payload onemapResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode onemap response: %w", err)
	}

	if payload.Found == 0 || len(payload.Results) == 0 {
		return nil, nil
	}
	lat, latErr := strconv.ParseFloat(payload.Results[0].Latitude, 64)
	lng, lngErr := strconv.ParseFloat(payload.Results[0].Longitude, 64)
	if latErr != nil || lngErr != nil || lat == 0 || lng == 0 {
		return nil, nil
	}
	return &Point{Lat: lat, Lng: lng}, nil
}
