// Package shipping resolves destination countries to shipping zones, costs
// and delivery estimates from a static table.
package shipping

import "strings"

type Zone string

const (
	ZoneEurope Zone = "EUROPE"
	ZoneUK     Zone = "UK"
	ZoneUSCA   Zone = "US_CA"
	ZoneRest   Zone = "REST"
)

// Rate is the cost and delivery estimate for a zone. CostBani is in minor
// currency units.
type Rate struct {
	Zone     Zone   `json:"zone"`
	Label    string `json:"label"`
	CostBani int    `json:"costBani"`
	ETA      string `json:"eta"`
}

var rates = map[Zone]Rate{
	ZoneEurope: {Zone: ZoneEurope, Label: "Europe", CostBani: 4900, ETA: "5-8 business days"},
	ZoneUK:     {Zone: ZoneUK, Label: "UK", CostBani: 5900, ETA: "6-10 business days"},
	ZoneUSCA:   {Zone: ZoneUSCA, Label: "USA/Canada", CostBani: 8900, ETA: "8-14 business days"},
	ZoneRest:   {Zone: ZoneRest, Label: "Rest of world", CostBani: 9900, ETA: "10-18 business days"},
}

var countryZones = map[string]Zone{
	"RO": ZoneEurope,
	"DE": ZoneEurope,
	"FR": ZoneEurope,
	"IT": ZoneEurope,
	"ES": ZoneEurope,
	"NL": ZoneEurope,
	"SE": ZoneEurope,
	"NO": ZoneEurope,
	"CH": ZoneEurope,
	"UK": ZoneUK,
	"US": ZoneUSCA,
	"CA": ZoneUSCA,
	"AU": ZoneRest,
	"JP": ZoneRest,
	"AE": ZoneRest,
}

// ResolveZone maps a country code to its shipping zone. Unknown or empty
// countries fall back to the rest-of-world zone.
func ResolveZone(countryCode string) Zone {
	zone, ok := countryZones[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return ZoneRest
	}
	return zone
}

// Resolve returns the rate for a destination country.
func Resolve(countryCode string) Rate {
	return rates[ResolveZone(countryCode)]
}

// CostBani returns the shipping cost for a destination, or zero when no
// destination has been set yet.
func CostBani(countryCode string) int {
	if strings.TrimSpace(countryCode) == "" {
		return 0
	}
	return Resolve(countryCode).CostBani
}
