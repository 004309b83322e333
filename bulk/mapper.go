package bulk

import (
	"sort"
	"strconv"
	"strings"

	"listing-manager/listing"
)

const specificPrefix = "specific_"

// maxPictures is how many "Picture URL n" columns the automotive layout carries.
const maxPictures = 12

var conditionCodes = map[string]string{
	"new":                      listing.ConditionNew,
	"brand new":                listing.ConditionNew,
	"remanufactured":           listing.ConditionRemanufactured,
	"used":                     listing.ConditionUsed,
	"for parts or not working": listing.ConditionForParts,
	"for parts":                listing.ConditionForParts,
}

var knownConditionIDs = map[string]bool{
	"1000": true, "1500": true, "2000": true, "2500": true, "3000": true, "7000": true,
}

// ConditionCode maps condition text onto a numeric code. Blank and
// unrecognized text both mean new; known numeric codes pass through.
func ConditionCode(text string) string {
	t := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if code, ok := conditionCodes[t]; ok {
		return code
	}
	if knownConditionIDs[t] {
		return t
	}
	return listing.ConditionNew
}

// Map projects row into a listing according to format, fills inferred and
// category-required specifics, and fails with *MappingError when title,
// description or category is still blank.
func Map(row Row, format Format) (*listing.Listing, error) {
	var l *listing.Listing
	var ex explicitSpecifics
	switch format {
	case FormatAutomotive:
		l, ex = mapAutomotive(row)
	default:
		l, ex = mapStandard(row)
	}
	if missing := l.MissingRequired(); len(missing) > 0 {
		return nil, &MappingError{Fields: missing, Row: row}
	}
	enrich(l, ex)
	applyCategoryDefaults(l)
	return l, nil
}

// Enrich runs inference and category defaults on a listing that did not
// come from a CSV row. Condition text is normalized like the automotive
// Condition column.
func Enrich(l *listing.Listing) {
	l.ConditionID = ConditionCode(l.ConditionID)
	enrich(l, explicitSpecifics{
		brand:   l.Brand,
		color:   l.Color,
		storage: l.StorageCapacity,
		kind:    l.Type,
		mpnName: "MPN",
	})
	applyCategoryDefaults(l)
}

// explicitSpecifics are the enrichment columns a row may carry directly.
type explicitSpecifics struct {
	brand, color, storage, kind, mpn, mpnName, model string
}

func mapStandard(row Row) (*listing.Listing, explicitSpecifics) {
	l := &listing.Listing{
		Title:       row.Get("title"),
		Description: row.Get("description"),
		Price:       row.Get("price"),
		Quantity:    row.Get("quantity"),
		CategoryID:  row.Get("category_id"),
		ConditionID: firstNonBlank(row.Get("condition_id"), listing.ConditionNew),
		SKU:         row.Get("sku", "SKU"),
		Location:    row.Get("location"),
	}
	if img := row.Get("image_url"); img != "" {
		l.ImageURLs = []string{img}
	}
	l.Specifics = prefixedSpecifics(row)
	return l, explicitSpecifics{
		brand:   row.Get("brand"),
		color:   row.Get("color"),
		storage: row.Get("storage_capacity"),
		kind:    row.Get("type"),
		mpn:     row.Get("mpn"),
		mpnName: "MPN",
		model:   row.Get("model"),
	}
}

func mapAutomotive(row Row) (*listing.Listing, explicitSpecifics) {
	l := &listing.Listing{
		Title:       row.Get("title", "Title"),
		Description: row.Get("description", "Description"),
		Price:       row.Get("List Price"),
		Quantity:    row.Get("Total Ship to Home Quantity"),
		CategoryID:  row.Get("Category"),
		ConditionID: ConditionCode(row.Get("Condition")),
		SKU:         row.Get("SKU"),
		Location:    row.Get("Location"),
	}
	for i := 1; i <= maxPictures; i++ {
		if u := row.Get("Picture URL " + strconv.Itoa(i)); u != "" {
			l.ImageURLs = append(l.ImageURLs, u)
		}
	}
	l.Specifics = prefixedSpecifics(row)
	for _, name := range []string{"Interchange Part Number", "Placement on Vehicle", "Fitment Type"} {
		l.SetSpecificIfAbsent(name, row.Get(name))
	}
	return l, explicitSpecifics{
		brand:   row.Get("Brand"),
		color:   row.Get("Color"),
		storage: row.Get("Storage Capacity"),
		kind:    row.Get("Type"),
		mpn:     row.Get("Manufacturer Part Number"),
		mpnName: "Manufacturer Part Number",
		model:   row.Get("Model"),
	}
}

// prefixedSpecifics turns specific_Fitment_Type=... into "Fitment Type".
// Columns are visited in name order so output is stable.
func prefixedSpecifics(row Row) []listing.NameValue {
	var keys []string
	for k := range row {
		if strings.HasPrefix(k, specificPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []listing.NameValue
	for _, k := range keys {
		v := strings.TrimSpace(row[k])
		name := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(k, specificPrefix), "_", " "))
		if v == "" || name == "" {
			continue
		}
		out = append(out, listing.NameValue{Name: name, Value: v})
	}
	return out
}

// enrich resolves brand, color, storage and type from explicit columns or,
// failing that, from the title. Brand is always sent; the others only when
// something was found.
func enrich(l *listing.Listing, ex explicitSpecifics) {
	l.Brand = firstNonBlank(ex.brand, InferBrand(l.Title))
	l.Color = firstNonBlank(ex.color, InferColor(l.Title))
	l.StorageCapacity = firstNonBlank(ex.storage, InferStorage(l.Title))
	l.Type = firstNonBlank(ex.kind, InferType(l.Title))

	l.SetSpecificIfAbsent("Brand", l.Brand)
	for _, s := range []listing.NameValue{
		{Name: "Color", Value: l.Color},
		{Name: "Storage Capacity", Value: l.StorageCapacity},
		{Name: "Type", Value: l.Type},
	} {
		if s.Value != listing.NotSpecified {
			l.SetSpecificIfAbsent(s.Name, s.Value)
		}
	}
	l.SetSpecificIfAbsent(ex.mpnName, ex.mpn)
	l.SetSpecificIfAbsent("Model", ex.model)
}

// Identity is what status and error log show to tell a row apart.
type Identity struct {
	SKU      string `json:"sku,omitempty"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price,omitempty"`
	Image    string `json:"image,omitempty"`
}

func Identify(row Row, format Format) Identity {
	if format == FormatAutomotive {
		return Identity{
			SKU:      row.Get("SKU"),
			Title:    row.Get("title", "Title"),
			Category: row.Get("Category"),
			Price:    row.Get("List Price"),
			Image:    row.Get("Picture URL 1"),
		}
	}
	return Identity{
		SKU:      row.Get("sku", "SKU"),
		Title:    row.Get("title"),
		Category: row.Get("category_id"),
		Price:    row.Get("price"),
		Image:    row.Get("image_url"),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
