package marketplace

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Ack is the acknowledgment code of every trading response.
type Ack string

const (
	AckSuccess        Ack = "Success"
	AckWarning        Ack = "Warning"
	AckFailure        Ack = "Failure"
	AckPartialFailure Ack = "PartialFailure"
)

// OK reports Success and Warning.
func (a Ack) OK() bool {
	switch Ack(strings.TrimSpace(string(a))) {
	case AckSuccess, AckWarning:
		return true
	}
	return false
}

// ErrorDetail is one entry of a response's Errors list.
type ErrorDetail struct {
	ShortMessage string `xml:"ShortMessage" json:"message"`
	LongMessage  string `xml:"LongMessage" json:"details"`
	ErrorCode    string `xml:"ErrorCode" json:"code,omitempty"`
	SeverityCode string `xml:"SeverityCode" json:"severity,omitempty"`
}

// AddItemResult is what a successful AddItem returns.
type AddItemResult struct {
	ItemID   string        `json:"itemId"`
	Ack      Ack           `json:"ack"`
	Warnings []ErrorDetail `json:"warnings,omitempty"`
	URL      string        `json:"listingUrl,omitempty"`
}

type User struct {
	UserID string `xml:"UserID" json:"userId"`
	Email  string `xml:"Email" json:"email,omitempty"`
	Status string `xml:"Status" json:"status,omitempty"`
}

type Category struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Confidence string `json:"confidence,omitempty"`
}

type Condition struct {
	ID          string `xml:"ID" json:"id"`
	DisplayName string `xml:"DisplayName" json:"name"`
}

// ActiveListing is one of the seller's live listings.
type ActiveListing struct {
	ItemID            string `json:"itemId"`
	Title             string `json:"title"`
	Price             string `json:"price,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Quantity          int    `json:"quantity"`
	QuantityAvailable int    `json:"quantityAvailable"`
	ListingStatus     string `json:"listingStatus,omitempty"`
	WatchCount        int    `json:"watchCount"`
	ImageURL          string `json:"imageUrl,omitempty"`
	ViewItemURL       string `json:"viewItemURL,omitempty"`
}

// ActiveList is one page of active listings.
type ActiveList struct {
	Listings     []ActiveListing `json:"listings"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"totalPages"`
	TotalEntries int             `json:"totalEntries"`
}

type addItemResponse struct {
	Ack    Ack           `xml:"Ack"`
	ItemID string        `xml:"ItemID"`
	Errors []ErrorDetail `xml:"Errors"`
}

type getUserResponse struct {
	Ack    Ack           `xml:"Ack"`
	User   User          `xml:"User"`
	Errors []ErrorDetail `xml:"Errors"`
}

type suggestedCategoriesResponse struct {
	Ack       Ack `xml:"Ack"`
	Suggested []struct {
		Category struct {
			CategoryID   string `xml:"CategoryID"`
			CategoryName string `xml:"CategoryName"`
		} `xml:"Category"`
		Confidence string `xml:"PercentItemFound"`
	} `xml:"SuggestedCategoryArray>SuggestedCategory"`
	Errors []ErrorDetail `xml:"Errors"`
}

type categoryFeaturesResponse struct {
	Ack        Ack           `xml:"Ack"`
	Conditions []Condition   `xml:"Category>ConditionValues>Condition"`
	Errors     []ErrorDetail `xml:"Errors"`
}

type myeBaySellingResponse struct {
	Ack    Ack `xml:"Ack"`
	Active struct {
		Items []struct {
			ItemID            string `xml:"ItemID"`
			Title             string `xml:"Title"`
			Quantity          int    `xml:"Quantity"`
			QuantityAvailable int    `xml:"QuantityAvailable"`
			WatchCount        int    `xml:"WatchCount"`
			SellingStatus     struct {
				CurrentPrice struct {
					Value    string `xml:",chardata"`
					Currency string `xml:"currencyID,attr"`
				} `xml:"CurrentPrice"`
				ListingStatus string `xml:"ListingStatus"`
			} `xml:"SellingStatus"`
			GalleryURL  string `xml:"PictureDetails>GalleryURL"`
			ViewItemURL string `xml:"ListingDetails>ViewItemURL"`
		} `xml:"ItemArray>Item"`
		TotalPages   int `xml:"PaginationResult>TotalNumberOfPages"`
		TotalEntries int `xml:"PaginationResult>TotalNumberOfEntries"`
	} `xml:"ActiveList"`
	Errors []ErrorDetail `xml:"Errors"`
}

type activeListRequest struct {
	Include    bool `xml:"Include"`
	Pagination struct {
		EntriesPerPage int `xml:"EntriesPerPage"`
		PageNumber     int `xml:"PageNumber"`
	} `xml:"Pagination"`
}

// xmlField is one child of a request envelope; Value is anything the
// encoder accepts, nested structs included.
type xmlField struct {
	Name  string
	Value any
}

// requestEnvelope renders the small read-only calls, which share a shape:
// root element, optional legacy credential, then the fields in order.
func requestEnvelope(root, credential string, fields []xmlField) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	start := xml.StartElement{
		Name: xml.Name{Local: root},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: "urn:ebay:apis:eBLBaseComponents"}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	if !IsOAuthToken(credential) {
		creds := struct {
			XMLName   xml.Name `xml:"RequesterCredentials"`
			AuthToken string   `xml:"eBayAuthToken"`
		}{AuthToken: strings.TrimSpace(credential)}
		if err := enc.Encode(creds); err != nil {
			return nil, err
		}
	}
	for _, f := range fields {
		if err := enc.EncodeElement(f.Value, xml.StartElement{Name: xml.Name{Local: f.Name}}); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", root, err)
	}
	return buf.Bytes(), nil
}
