// Package format renders raw numeric and locale fields into the display
// forms used by the canonical record. All functions are pure.
package format

import (
	"fmt"
	"strings"
)

// Count renders an engagement count the way the platform UI abbreviates
// it: 999 -> "999", 1500 -> "1.5k", 2000000 -> "2m". A trailing ".0" is
// suppressed ("1k", not "1.0k").
func Count(n int64) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "m"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "k"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// Bytes renders a file size in megabytes with two decimal places.
// Zero is the literal "0 MB".
func Bytes(n int64) string {
	if n == 0 {
		return "0 MB"
	}
	return fmt.Sprintf("%.2f MB", float64(n)/1048576)
}

// Region maps a two-letter region code to its display name. Unknown codes
// pass through unchanged; an empty code renders "Unknown".
func Region(code string) string {
	if code == "" {
		return "Unknown"
	}
	if name, ok := regionNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// regionNames covers the region codes the platform is known to emit.
var regionNames = map[string]string{
	"AE": "United Arab Emirates",
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BD": "Bangladesh",
	"BE": "Belgium",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CN": "China",
	"CO": "Colombia",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"EC": "Ecuador",
	"EG": "Egypt",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IQ": "Iraq",
	"IT": "Italy",
	"JP": "Japan",
	"KH": "Cambodia",
	"KR": "South Korea",
	"KZ": "Kazakhstan",
	"MA": "Morocco",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NG": "Nigeria",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PE": "Peru",
	"PH": "Philippines",
	"PK": "Pakistan",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RU": "Russia",
	"SA": "Saudi Arabia",
	"SE": "Sweden",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"UA": "Ukraine",
	"US": "United States",
	"VN": "Vietnam",
	"ZA": "South Africa",
}
