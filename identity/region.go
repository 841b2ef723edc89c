package identity

import (
	"regexp"
	"strings"
)

var regionSuffix = regexp.MustCompile(`^(.*?)\s*\(([A-Za-z]{2,3})\)\s*$`)

// regionAliases folds the codes that show up with more than one spelling.
// Codes not listed here are simply lowercased.
var regionAliases = map[string]string{
	"UK":  "gb",
	"GB":  "gb",
	"IR":  "ire",
	"IRE": "ire",
	"US":  "usa",
	"USA": "usa",
	"FR":  "fr",
	"FRA": "fr",
	"GE":  "ger",
	"GER": "ger",
	"IT":  "ity",
	"ITY": "ity",
	"JP":  "jpn",
	"JPN": "jpn",
	"AU":  "aus",
	"AUS": "aus",
	"NZ":  "nz",
	"NZL": "nz",
	"SAF": "saf",
	"ZA":  "saf",
}

// ParseRegion splits a display name such as "Sea The Stars (IRE)" into its
// base name and normalized breeding region. ok is false when the name has
// no trailing code; base is then the trimmed input.
func ParseRegion(name string) (base, region string, ok bool) {
	m := regionSuffix.FindStringSubmatch(name)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return strings.TrimSpace(name), "", false
	}
	return strings.TrimSpace(m[1]), NormalizeRegion(m[2]), true
}

// NormalizeRegion maps a region code to its lowercase canonical form.
func NormalizeRegion(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if r, ok := regionAliases[c]; ok {
		return r
	}
	return strings.ToLower(c)
}
