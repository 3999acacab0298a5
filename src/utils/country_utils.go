package utils

import (
	_ "embed"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/fursio/src/logger"
)

// CountryInfo is one row of the bundled country table.
type CountryInfo struct {
	Country string `json:"country"`
	Alpha2  string `json:"alpha2"`
	Alpha3  string `json:"alpha3"`
}

//go:embed data/countries.json
var countryData []byte

var (
	countryByName   map[string]CountryInfo
	countryByAlpha3 map[string]CountryInfo
)

func init() {
	var countries []CountryInfo
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(countryData, &countries); err != nil {
		// The table is compiled in; a decode failure is a build defect.
		panic("utils: invalid embedded country table: " + err.Error())
	}
	countryByName = make(map[string]CountryInfo, len(countries))
	countryByAlpha3 = make(map[string]CountryInfo, len(countries))
	for _, c := range countries {
		countryByName[strings.ToLower(c.Country)] = c
		countryByAlpha3[strings.ToUpper(c.Alpha3)] = c
	}
}

// NormalizeCountryCode maps whatever the statement put in its Country column
// (free-text name, alpha-3 or alpha-2 code) to an ISO alpha-2 code. Values
// that cannot be recognized pass through unchanged; the report schema would
// rather carry an odd value than lose the row.
func NormalizeCountryCode(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if len(v) == 2 && isLetters(v) {
		return strings.ToUpper(v)
	}
	if len(v) == 3 && isLetters(v) {
		if c, ok := countryByAlpha3[strings.ToUpper(v)]; ok {
			return c.Alpha2
		}
	}
	if c, ok := countryByName[strings.ToLower(v)]; ok {
		return c.Alpha2
	}
	if logger.L != nil {
		logger.L.Debug("Unrecognized country value passed through", "value", v)
	}
	return v
}

// CountryFromISIN derives the alpha-2 issuing country from an ISIN prefix.
// Returns "" for ISINs too short to carry one.
func CountryFromISIN(isin string) string {
	if len(isin) < 2 {
		return ""
	}
	return strings.ToUpper(isin[:2])
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
