package geocoding

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GazetteerEntry maps one known area name to fixed coordinates. Names are
// matched as case-insensitive substrings of the query.
type GazetteerEntry struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// builtinGazetteer lists known Singapore industrial and commercial areas.
// Order matters: the first containing match wins, so compound names like
// "ubi techpark" sit above their bare prefixes.
var builtinGazetteer = []GazetteerEntry{
	{"ubi techpark", 1.3307, 103.8990},
	{"ubi", 1.3307, 103.8990},
	{"sim lim tower", 1.3025, 103.8463},
	{"sim lim", 1.3025, 103.8463},
	{"tuas south", 1.2800, 103.6200},
	{"tuas", 1.3200, 103.6400},
	{"jurong east", 1.3329, 103.7436},
	{"jurong west", 1.3400, 103.7000},
	{"jurong", 1.3329, 103.7436},
	{"pioneer", 1.3151, 103.6975},
	{"henderson road", 1.2820, 103.8189},
	{"henderson", 1.2820, 103.8189},
	{"bukit merah", 1.2819, 103.8239},
	{"alexandra", 1.2897, 103.8067},
	{"paya lebar", 1.3187, 103.8930},
	{"macpherson", 1.3266, 103.8867},
	{"tai seng", 1.3360, 103.8880},
	{"kaki bukit", 1.3355, 103.9055},
	{"eunos", 1.3201, 103.9016},
	{"changi", 1.3600, 103.9800},
	{"loyang", 1.3700, 103.9700},
	{"tampines", 1.3525, 103.9447},
	{"woodlands", 1.4400, 103.7867},
	{"yishun", 1.4294, 103.8354},
	{"sembawang", 1.4491, 103.8185},
	{"admiralty", 1.4406, 103.8009},
	{"kranji", 1.4251, 103.7620},
	{"sungei kadut", 1.4140, 103.7490},
	{"mandai", 1.4167, 103.7700},
	{"ang mo kio", 1.3691, 103.8454},
	{"bishan", 1.3526, 103.8352},
	{"toa payoh", 1.3343, 103.8563},
	{"balestier", 1.3267, 103.8506},
	{"novena", 1.3204, 103.8438},
	{"orchard", 1.3048, 103.8318},
	{"river valley", 1.2940, 103.8300},
	{"boat quay", 1.2867, 103.8498},
	{"raffles place", 1.2830, 103.8513},
	{"tanjong pagar", 1.2744, 103.8425},
	{"chinatown", 1.2833, 103.8432},
	{"clarke quay", 1.2888, 103.8463},
	{"bugis", 1.3008, 103.8553},
	{"little india", 1.3066, 103.8518},
	{"geylang", 1.3188, 103.8836},
	{"marine parade", 1.3026, 103.9049},
	{"east coast", 1.3050, 103.9300},
	{"katong", 1.3050, 103.9000},
	{"siglap", 1.3150, 103.9250},
	{"bedok", 1.3236, 103.9273},
	{"pasir ris", 1.3730, 103.9497},
	{"serangoon", 1.3502, 103.8716},
	{"hougang", 1.3612, 103.8863},
	{"punggol", 1.3984, 103.9072},
	{"sengkang", 1.3868, 103.8914},
	{"commonwealth", 1.3024, 103.7980},
	{"queenstown", 1.2942, 103.8060},
	{"clementi", 1.3150, 103.7636},
	{"upper bukit timah", 1.3600, 103.7700},
	{"bukit timah", 1.3294, 103.8021},
	{"jalan besar", 1.3080, 103.8560},
	{"arab street", 1.3020, 103.8590},
	{"beach road", 1.2990, 103.8610},
	{"peninsula plaza", 1.2937, 103.8522},
}

// LoadGazetteerFile reads overlay entries from a yaml list of
// {name, lat, lng} documents.
func LoadGazetteerFile(path string) ([]GazetteerEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []GazetteerEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse gazetteer file %s: %w", path, err)
	}
	return entries, nil
}

func lookupGazetteer(table []GazetteerEntry, query string) *Point {
	q := strings.ToLower(query)
	for _, e := range table {
		if strings.Contains(q, e.Name) {
			return &Point{Lat: e.Lat, Lng: e.Lng}
		}
	}
	return nil
}
