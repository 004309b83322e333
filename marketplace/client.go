// Package marketplace talks to the legacy XML trading API: it posts
// serialized requests with the call headers and decodes the acknowledgment.
package marketplace

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"listing-manager/config"
)

const oauthTokenPrefix = "v^1.1#"

// IsOAuthToken tells user tokens from the token-based API apart from legacy
// auth tokens. Both are otherwise opaque.
func IsOAuthToken(credential string) bool {
	return strings.HasPrefix(strings.TrimSpace(credential), oauthTokenPrefix)
}

// Client posts trading API calls.
type Client struct {
	cfg  config.MarketplaceConfig
	http *http.Client
}

func NewClient(cfg config.MarketplaceConfig) *Client {
	hc := &http.Client{}
	if t := cfg.Timeout(); t > 0 {
		hc.Timeout = t
	}
	return &Client{cfg: cfg, http: hc}
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// call posts body as callName and returns the raw response. Non-2xx
// statuses become a *SubmissionError carrying a body excerpt.
func (c *Client) call(ctx context.Context, callName, credential string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", c.cfg.CompatibilityLevel)
	req.Header.Set("X-EBAY-API-CALL-NAME", callName)
	req.Header.Set("X-EBAY-API-SITEID", c.cfg.SiteID)
	if c.cfg.AppID != "" {
		req.Header.Set("X-EBAY-API-APP-NAME", c.cfg.AppID)
	}
	if c.cfg.DevID != "" {
		req.Header.Set("X-EBAY-API-DEV-NAME", c.cfg.DevID)
	}
	if c.cfg.CertID != "" {
		req.Header.Set("X-EBAY-API-CERT-NAME", c.cfg.CertID)
	}
	if IsOAuthToken(credential) {
		req.Header.Set("X-EBAY-API-IAF-TOKEN", strings.TrimSpace(credential))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", callName, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", callName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SubmissionError{
			Call:       callName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("marketplace HTTP %d: %s", resp.StatusCode, excerpt(data, 300)),
		}
	}
	return data, nil
}

// AddItem submits a serialized AddItemRequest. Warning acks are successes;
// an ack without an ItemID is not.
func (c *Client) AddItem(ctx context.Context, credential string, payload []byte) (*AddItemResult, error) {
	data, err := c.call(ctx, "AddItem", credential, payload)
	if err != nil {
		return nil, err
	}
	var resp addItemResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("AddItem decode response: %w", err)
	}
	if !resp.Ack.OK() {
		return nil, newAckError("AddItem", "Failed to create listing", resp.Errors)
	}
	itemID := strings.TrimSpace(resp.ItemID)
	if itemID == "" {
		return nil, &SubmissionError{
			Call:    "AddItem",
			Ack:     resp.Ack,
			Message: fmt.Sprintf("AddItem acknowledged %s without an ItemID", resp.Ack),
			Details: details(resp.Errors),
		}
	}
	return &AddItemResult{
		ItemID:   itemID,
		Ack:      resp.Ack,
		Warnings: details(resp.Errors),
		URL:      c.ItemURL(itemID),
	}, nil
}

// ItemURL is the public page of a created listing.
func (c *Client) ItemURL(itemID string) string {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return ""
	}
	return c.cfg.ItemURLPrefix + itemID
}

// GetUser verifies credential and returns the account it belongs to.
func (c *Client) GetUser(ctx context.Context, credential string) (*User, error) {
	body, err := requestEnvelope("GetUserRequest", credential, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.call(ctx, "GetUser", credential, body)
	if err != nil {
		return nil, err
	}
	var resp getUserResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("GetUser decode response: %w", err)
	}
	if !resp.Ack.OK() {
		return nil, newAckError("GetUser", "Invalid token", resp.Errors)
	}
	return &resp.User, nil
}

// GetSuggestedCategories searches categories matching query.
func (c *Client) GetSuggestedCategories(ctx context.Context, credential, query string) ([]Category, error) {
	body, err := requestEnvelope("GetSuggestedCategoriesRequest", credential, []xmlField{{"Query", query}})
	if err != nil {
		return nil, err
	}
	data, err := c.call(ctx, "GetSuggestedCategories", credential, body)
	if err != nil {
		return nil, err
	}
	var resp suggestedCategoriesResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("GetSuggestedCategories decode response: %w", err)
	}
	if !resp.Ack.OK() {
		return nil, newAckError("GetSuggestedCategories", "Failed to get categories", resp.Errors)
	}
	out := make([]Category, 0, len(resp.Suggested))
	for _, s := range resp.Suggested {
		out = append(out, Category{
			CategoryID: s.Category.CategoryID,
			Name:       s.Category.CategoryName,
			Confidence: s.Confidence,
		})
	}
	return out, nil
}

// GetCategoryConditions lists the condition values allowed in a category.
func (c *Client) GetCategoryConditions(ctx context.Context, credential, categoryID string) ([]Condition, error) {
	body, err := requestEnvelope("GetCategoryFeaturesRequest", credential, []xmlField{
		{"CategoryID", categoryID},
		{"FeatureID", "ConditionValues"},
		{"DetailLevel", "ReturnAll"},
	})
	if err != nil {
		return nil, err
	}
	data, err := c.call(ctx, "GetCategoryFeatures", credential, body)
	if err != nil {
		return nil, err
	}
	var resp categoryFeaturesResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("GetCategoryFeatures decode response: %w", err)
	}
	if !resp.Ack.OK() {
		return nil, newAckError("GetCategoryFeatures", "Failed to get conditions", resp.Errors)
	}
	return resp.Conditions, nil
}

// ActiveListingsPerPage is the page size asked of GetMyeBaySelling.
const ActiveListingsPerPage = 100

// GetMyeBaySelling returns one page (1-based) of the seller's active
// listings.
func (c *Client) GetMyeBaySelling(ctx context.Context, credential string, page int) (*ActiveList, error) {
	if page < 1 {
		page = 1
	}
	active := activeListRequest{Include: true}
	active.Pagination.EntriesPerPage = ActiveListingsPerPage
	active.Pagination.PageNumber = page
	body, err := requestEnvelope("GetMyeBaySellingRequest", credential, []xmlField{{"ActiveList", active}})
	if err != nil {
		return nil, err
	}
	data, err := c.call(ctx, "GetMyeBaySelling", credential, body)
	if err != nil {
		return nil, err
	}
	var resp myeBaySellingResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("GetMyeBaySelling decode response: %w", err)
	}
	if !resp.Ack.OK() {
		return nil, newAckError("GetMyeBaySelling", "Failed to get listings", resp.Errors)
	}
	out := &ActiveList{
		Listings:     make([]ActiveListing, 0, len(resp.Active.Items)),
		Page:         page,
		TotalPages:   resp.Active.TotalPages,
		TotalEntries: resp.Active.TotalEntries,
	}
	for _, it := range resp.Active.Items {
		out.Listings = append(out.Listings, ActiveListing{
			ItemID:            strings.TrimSpace(it.ItemID),
			Title:             it.Title,
			Price:             strings.TrimSpace(it.SellingStatus.CurrentPrice.Value),
			Currency:          it.SellingStatus.CurrentPrice.Currency,
			Quantity:          it.Quantity,
			QuantityAvailable: it.QuantityAvailable,
			ListingStatus:     it.SellingStatus.ListingStatus,
			WatchCount:        it.WatchCount,
			ImageURL:          it.GalleryURL,
			ViewItemURL:       it.ViewItemURL,
		})
	}
	return out, nil
}

func excerpt(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
