package bulk

import (
	"listing-manager/listing"
)

const doesNotApply = "Does Not Apply"

// categoryDefaults are item specifics a category requires. They only fill
// gaps; a specific already present on the listing is never replaced.
type categoryDefaults struct {
	specifics []listing.NameValue
	// the part number falls back to the SKU, then to doesNotApply
	mpnFromSKU bool
}

var autoParts = categoryDefaults{
	specifics:  []listing.NameValue{{Name: "Fitment Type", Value: "Direct Replacement"}},
	mpnFromSKU: true,
}

var categoryTable = map[string]categoryDefaults{
	"9355":  autoParts,
	"6030":  autoParts,
	"33637": autoParts,
	"171485": {specifics: []listing.NameValue{
		{Name: "Type", Value: "Tablet"},
		{Name: "Connectivity", Value: "Wi-Fi"},
	}},
	"112529": {specifics: []listing.NameValue{
		{Name: "Connectivity", Value: "Wired"},
	}},
}

func applyCategoryDefaults(l *listing.Listing) {
	d, ok := categoryTable[l.CategoryID]
	if !ok {
		return
	}
	if d.mpnFromSKU {
		l.SetSpecificIfAbsent("Manufacturer Part Number", firstNonBlank(l.SKU, doesNotApply))
	}
	for _, s := range d.specifics {
		l.SetSpecificIfAbsent(s.Name, s.Value)
	}
	if l.Type == listing.NotSpecified {
		if v, ok := l.Specific("Type"); ok {
			l.Type = v
		}
	}
}
