package listing

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"listing-manager/config"
	"listing-manager/marketplace"
)

// TradingNamespace is the default namespace of every trading API document.
const TradingNamespace = "urn:ebay:apis:eBLBaseComponents"

// MaxTitleLength is enforced before submission; the marketplace rejects longer titles.
const MaxTitleLength = 80

var ErrMissingCredential = errors.New("missing marketplace credential")

// Serializer renders listings into AddItem requests. The zero value is not
// usable: policies are required by every request.
type Serializer struct {
	Policies config.PolicyConfig
	Defaults config.ListingDefaults
}

func NewSerializer(cfg *config.Config) *Serializer {
	return &Serializer{Policies: cfg.Policies, Defaults: cfg.Listing}
}

type cdataText struct {
	Text string `xml:",cdata"`
}

type requesterCredentials struct {
	AuthToken string `xml:"eBayAuthToken"`
}

type primaryCategory struct {
	CategoryID string `xml:"CategoryID"`
}

type pictureDetails struct {
	PictureURL []string `xml:"PictureURL"`
}

type nameValueList struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type itemSpecifics struct {
	NameValueList []nameValueList `xml:"NameValueList"`
}

type sellerProfiles struct {
	Shipping struct {
		ID string `xml:"ShippingProfileID"`
	} `xml:"SellerShippingProfile"`
	Return struct {
		ID string `xml:"ReturnProfileID"`
	} `xml:"SellerReturnProfile"`
	Payment struct {
		ID string `xml:"PaymentProfileID"`
	} `xml:"SellerPaymentProfile"`
}

type addItem struct {
	Title                  string          `xml:"Title"`
	Description            cdataText       `xml:"Description"`
	PrimaryCategory        primaryCategory `xml:"PrimaryCategory"`
	StartPrice             string          `xml:"StartPrice"`
	CategoryMappingAllowed bool            `xml:"CategoryMappingAllowed"`
	ConditionID            string          `xml:"ConditionID,omitempty"`
	Country                string          `xml:"Country"`
	Currency               string          `xml:"Currency"`
	DispatchTimeMax        int             `xml:"DispatchTimeMax"`
	ListingDuration        string          `xml:"ListingDuration"`
	ListingType            string          `xml:"ListingType"`
	Location               string          `xml:"Location,omitempty"`
	PostalCode             string          `xml:"PostalCode,omitempty"`
	PictureDetails         *pictureDetails `xml:"PictureDetails,omitempty"`
	ItemSpecifics          *itemSpecifics  `xml:"ItemSpecifics,omitempty"`
	Quantity               string          `xml:"Quantity"`
	SKU                    string          `xml:"SKU,omitempty"`
	SellerProfiles         sellerProfiles  `xml:"SellerProfiles"`
	Site                   string          `xml:"Site,omitempty"`
}

type addItemRequest struct {
	XMLName              xml.Name              `xml:"urn:ebay:apis:eBLBaseComponents AddItemRequest"`
	RequesterCredentials *requesterCredentials `xml:"RequesterCredentials,omitempty"`
	ErrorLanguage        string                `xml:"ErrorLanguage"`
	WarningLevel         string                `xml:"WarningLevel"`
	Item                 addItem               `xml:"Item"`
}

// Render produces the AddItem request body for l. Text nodes are escaped by
// the encoder; the description always travels as CDATA. OAuth credentials are
// left out of the body, the client sends them as a header.
func (s *Serializer) Render(l *Listing, credential string) ([]byte, error) {
	if l == nil {
		return nil, errors.New("nil listing")
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}
	title := xmlSafe(l.Title)
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return nil, fmt.Errorf("title is %d characters, the limit is %d", n, MaxTitleLength)
	}

	req := addItemRequest{
		ErrorLanguage: "en_US",
		WarningLevel:  "High",
		Item: addItem{
			Title:                  title,
			Description:            cdataText{Text: xmlSafe(l.Description)},
			PrimaryCategory:        primaryCategory{CategoryID: xmlSafe(l.CategoryID)},
			StartPrice:             xmlSafe(l.Price),
			CategoryMappingAllowed: true,
			ConditionID:            xmlSafe(l.ConditionID),
			Country:                s.Defaults.Country,
			Currency:               s.Defaults.Currency,
			DispatchTimeMax:        s.Defaults.DispatchTimeMax,
			ListingDuration:        s.Defaults.ListingDuration,
			ListingType:            s.Defaults.ListingType,
			Location:               xmlSafe(firstNonBlank(l.Location, s.Defaults.Location)),
			PostalCode:             s.Defaults.PostalCode,
			Quantity:               xmlSafe(firstNonBlank(l.Quantity, "1")),
			SKU:                    xmlSafe(l.SKU),
			Site:                   s.Defaults.Site,
		},
	}
	if !marketplace.IsOAuthToken(credential) {
		req.RequesterCredentials = &requesterCredentials{AuthToken: credential}
	}

	var pics []string
	for _, u := range l.ImageURLs {
		if u = strings.TrimSpace(xmlSafe(u)); u != "" {
			pics = append(pics, u)
		}
	}
	if len(pics) > 0 {
		req.Item.PictureDetails = &pictureDetails{PictureURL: pics}
	}

	var nvl []nameValueList
	for _, spec := range l.Specifics {
		name, value := strings.TrimSpace(xmlSafe(spec.Name)), strings.TrimSpace(xmlSafe(spec.Value))
		if name == "" || value == "" {
			continue
		}
		nvl = append(nvl, nameValueList{Name: name, Value: value})
	}
	if len(nvl) > 0 {
		req.Item.ItemSpecifics = &itemSpecifics{NameValueList: nvl}
	}

	req.Item.SellerProfiles.Shipping.ID = s.Policies.ShippingProfileID
	req.Item.SellerProfiles.Return.ID = s.Policies.ReturnProfileID
	req.Item.SellerProfiles.Payment.ID = s.Policies.PaymentProfileID

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("encode AddItemRequest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode AddItemRequest: %w", err)
	}
	return buf.Bytes(), nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// xmlSafe drops runes outside the XML 1.0 Char production. CDATA sections
// are not escaped, so a stray control byte would make the document
// unparseable.
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
