package geocoding

import (
	"encoding/json"
	"fmt"
)

// Point is a resolved WGS84 coordinate pair. A nil *Point means not
// found; a partial coordinate is unrepresentable.
type Point struct {
	Lat float64
	Lng float64
}

// The cache document stores points as two-element arrays, so Point
// marshals that way.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode coordinate pair: %w", err)
	}
	p.Lat, p.Lng = pair[0], pair[1]
	return nil
}
