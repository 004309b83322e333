// Package listing holds the canonical listing-request model shared by the
// bulk pipeline and the single-listing endpoint, and renders it into the
// marketplace's add-item XML payload.
package listing

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Sentinels returned by title inference when nothing matches.
const (
	Unbranded    = "Unbranded"
	NotSpecified = "Not Specified"
)

// Condition codes understood by the marketplace.
const (
	ConditionNew            = "1000"
	ConditionRemanufactured = "2500"
	ConditionUsed           = "3000"
	ConditionForParts       = "7000"
)

// NameValue is one item specific.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Listing is a fully mapped add-item request, independent of the CSV
// dialect it came from.
type Listing struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	CategoryID  string `json:"categoryId" label:"category" validate:"required"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	ConditionID string `json:"conditionId"`
	// First entry is the gallery picture.
	ImageURLs []string `json:"imageUrls,omitempty"`
	SKU       string   `json:"sku,omitempty"`
	Location  string   `json:"location,omitempty"`

	Brand           string `json:"brand"`
	Color           string `json:"color"`
	StorageCapacity string `json:"storageCapacity"`
	Type            string `json:"type"`

	Specifics []NameValue `json:"specifics,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return jsonName(f.Tag.Get("json"))
		})
	})
	return validate
}

// MissingRequired names the hard-required fields that are blank. Values are compared after trimming.
func (l *Listing) MissingRequired() []string {
	trimmed := *l
	trimmed.Title = strings.TrimSpace(l.Title)
	trimmed.Description = strings.TrimSpace(l.Description)
	trimmed.CategoryID = strings.TrimSpace(l.CategoryID)
	err := structValidator().Struct(&trimmed)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	var missing []string
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return missing
}

// Specific returns the value of the named item specific, case-insensitively.
func (l *Listing) Specific(name string) (string, bool) {
	for _, s := range l.Specifics {
		if strings.EqualFold(s.Name, name) {
			return s.Value, true
		}
	}
	return "", false
}

// SetSpecificIfAbsent adds name=value unless the name is already present or
// value is blank.
func (l *Listing) SetSpecificIfAbsent(name, value string) {
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return
	}
	if _, ok := l.Specific(name); ok {
		return
	}
	l.Specifics = append(l.Specifics, NameValue{Name: name, Value: value})
}

func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
