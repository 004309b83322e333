package bulk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"listing-manager/listing"
)

// vocabulary maps title keywords onto the value they imply. Matching is
// whole-word and case-insensitive; the earliest match in the title wins and
// ties go to the longer keyword.
type vocabulary struct {
	entries []vocabEntry
}

type vocabEntry struct {
	keyword string
	value   string
	re      *regexp.Regexp
}

func newVocabulary(pairs map[string]string) *vocabulary {
	v := &vocabulary{}
	for kw, val := range pairs {
		v.entries = append(v.entries, vocabEntry{
			keyword: kw,
			value:   val,
			re:      regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(kw) + `($|[^\p{L}\p{N}])`),
		})
	}
	sort.Slice(v.entries, func(i, j int) bool {
		if len(v.entries[i].keyword) != len(v.entries[j].keyword) {
			return len(v.entries[i].keyword) > len(v.entries[j].keyword)
		}
		return v.entries[i].keyword < v.entries[j].keyword
	})
	return v
}

func (v *vocabulary) find(text string) (string, bool) {
	best, bestAt := "", -1
	for _, e := range v.entries {
		loc := e.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		// entries are longest first, so a strict < keeps the longer keyword on ties
		if bestAt == -1 || loc[0] < bestAt {
			best, bestAt = e.value, loc[0]
		}
	}
	return best, bestAt >= 0
}

var brandVocabulary = newVocabulary(map[string]string{
	"Apple": "Apple", "iPhone": "Apple", "iPad": "Apple", "MacBook": "Apple", "AirPods": "Apple",
	"Samsung": "Samsung", "Galaxy": "Samsung",
	"Google": "Google", "Pixel": "Google",
	"Sony": "Sony", "PlayStation": "Sony",
	"LG": "LG", "Motorola": "Motorola", "OnePlus": "OnePlus", "Nokia": "Nokia",
	"Huawei": "Huawei", "Xiaomi": "Xiaomi", "Microsoft": "Microsoft", "Xbox": "Microsoft",
	"Dell": "Dell", "HP": "HP", "Lenovo": "Lenovo", "Asus": "ASUS", "Acer": "Acer",
	"Bose": "Bose", "JBL": "JBL", "Beats": "Beats", "Nintendo": "Nintendo",
	"Canon": "Canon", "Nikon": "Nikon", "Garmin": "Garmin", "Fitbit": "Fitbit",
	"Bosch": "Bosch", "ACDelco": "ACDelco", "Denso": "Denso", "Motorcraft": "Motorcraft",
	"Mopar": "Mopar", "Dorman": "Dorman", "Moog": "Moog", "Monroe": "Monroe", "NGK": "NGK",
	"Brembo": "Brembo", "Wagner": "Wagner", "Gates": "Gates", "Dayco": "Dayco",
})

var colorVocabulary = newVocabulary(map[string]string{
	"Black": "Black", "White": "White", "Silver": "Silver", "Gold": "Gold",
	"Rose Gold": "Rose Gold", "Space Gray": "Space Gray", "Space Grey": "Space Gray",
	"Gray": "Gray", "Grey": "Gray", "Graphite": "Graphite", "Midnight": "Midnight",
	"Starlight": "Starlight", "Blue": "Blue", "Red": "Red", "Green": "Green",
	"Yellow": "Yellow", "Orange": "Orange", "Pink": "Pink", "Purple": "Purple",
	"Brown": "Brown", "Beige": "Beige", "Clear": "Clear", "Chrome": "Chrome",
})

var typeVocabulary = newVocabulary(map[string]string{
	"Smartphone": "Smartphone", "Phone": "Smartphone", "iPhone": "Smartphone",
	"Tablet": "Tablet", "iPad": "Tablet",
	"Laptop": "Laptop", "Notebook": "Laptop", "MacBook": "Laptop",
	"Headphones": "Headphones", "Headset": "Headphones", "Earbuds": "Earbuds", "AirPods": "Earbuds",
	"Smartwatch": "Smartwatch", "Smart Watch": "Smartwatch",
	"Brake Pads": "Brake Pad Set", "Brake Pad": "Brake Pad Set", "Rotor": "Brake Rotor",
	"Alternator": "Alternator", "Starter": "Starter Motor", "Headlight": "Headlight Assembly",
	"Radiator": "Radiator", "Spark Plug": "Spark Plug",
})

var storagePattern = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}.])(\d+(?:\.\d+)?)\s*(GB|TB|MB)($|[^\p{L}\p{N}])`)

// InferBrand finds a brand keyword in title, else listing.Unbranded.
func InferBrand(title string) string {
	if v, ok := brandVocabulary.find(title); ok {
		return v
	}
	return listing.Unbranded
}

// InferColor finds a color keyword in title, else listing.NotSpecified.
func InferColor(title string) string {
	if v, ok := colorVocabulary.find(title); ok {
		return v
	}
	return listing.NotSpecified
}

// InferStorage turns "128GB" or "1 tb" into "128 GB" / "1 TB".
func InferStorage(title string) string {
	m := storagePattern.FindStringSubmatch(title)
	if m == nil {
		return listing.NotSpecified
	}
	return fmt.Sprintf("%s %s", m[2], strings.ToUpper(m[3]))
}

func InferType(title string) string {
	if v, ok := typeVocabulary.find(title); ok {
		return v
	}
	return listing.NotSpecified
}
