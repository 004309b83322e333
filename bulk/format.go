// Package bulk turns uploaded CSV bytes into rows and maps each row into a
// canonical listing, per declared column layout.
package bulk

import (
	"strings"
)

// Row is one CSV record keyed by header name.
type Row map[string]string

// Get returns the trimmed value of the first column present among names.
func (r Row) Get(names ...string) string {
	for _, n := range names {
		if v, ok := r[n]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Format is the declared column layout of an upload.
type Format string

const (
	FormatStandard   Format = "standard"
	FormatAutomotive Format = "automotive"
)

var requiredFields = map[Format][]string{
	FormatStandard: {"title", "description", "price", "quantity", "category_id"},
	FormatAutomotive: {
		"SKU", "Localized For", "title", "description", "Picture URL 1",
		"Brand", "Condition", "Total Ship to Home Quantity", "Category", "List Price",
	},
}

// ParseFormat accepts the names case-insensitively; blank means standard.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatStandard):
		return FormatStandard, nil
	case string(FormatAutomotive):
		return FormatAutomotive, nil
	}
	return "", &UnknownFormatError{Format: s}
}

// RequiredFields returns the schema columns of f in display order.
func (f Format) RequiredFields() []string {
	out := make([]string, len(requiredFields[f]))
	copy(out, requiredFields[f])
	return out
}

func (f Format) String() string { return string(f) }
