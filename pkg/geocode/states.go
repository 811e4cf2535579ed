package geocode

import (
	"regexp"
	"strings"
)

// stateNames maps two-letter US state abbreviations to full names.
// Nominatim resolves full names far more reliably than abbreviations.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

var trailingAbbrevPattern = regexp.MustCompile(`,\s*([A-Z]{2})$`)

// ExpandStateAbbreviation expands a trailing two-letter state
// abbreviation ("Denver, CO") to the full state name
// ("Denver, Colorado"). Unrecognized input is returned unchanged.
func ExpandStateAbbreviation(location string) string {
	match := trailingAbbrevPattern.FindStringSubmatchIndex(strings.ToUpper(location))
	if match == nil {
		return location
	}

	abbr := strings.ToUpper(location[match[2]:match[3]])
	name, ok := stateNames[abbr]
	if !ok {
		return location
	}

	return location[:match[0]] + ", " + name
}
