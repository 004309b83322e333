package listing

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-manager/config"
)

func testSerializer() *Serializer {
	return &Serializer{
		Policies: config.PolicyConfig{ShippingProfileID: "ship-1", ReturnProfileID: "ret-2", PaymentProfileID: "pay-3"},
		Defaults: config.ListingDefaults{
			Country: "US", Currency: "USD", DispatchTimeMax: 3,
			ListingDuration: "GTC", ListingType: "FixedPriceItem", Location: "United States",
		},
	}
}

func sampleListing() *Listing {
	return &Listing{
		Title:       `Tom & Jerry's <"Deluxe"> set`,
		Description: "<p>Great</p> ]]> tail",
		CategoryID:  "9355",
		Price:       "19.99",
		ConditionID: ConditionUsed,
		ImageURLs:   []string{"https://img.example.com/a.jpg?x=1&y=2", " "},
		SKU:         "SKU-1",
		Specifics: []NameValue{
			{Name: "Brand", Value: "Acme"},
			{Name: "Color", Value: ""},
		},
	}
}

func TestRenderEscapesText(t *testing.T) {
	out, err := testSerializer().Render(sampleListing(), "legacy-token")
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `<Title>Tom &amp; Jerry&#39;s &lt;&#34;Deluxe&#34;&gt; set</Title>`)
	assert.Contains(t, s, "<PictureURL>https://img.example.com/a.jpg?x=1&amp;y=2</PictureURL>")
	assert.Equal(t, 1, strings.Count(s, "<PictureURL>"))
}

func TestRenderDescriptionIsCDATA(t *testing.T) {
	out, err := testSerializer().Render(sampleListing(), "legacy-token")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<![CDATA[<p>Great</p> ]]]]><![CDATA[> tail]]>")

	var parsed struct {
		Item struct {
			Title       string `xml:"Title"`
			Description string `xml:"Description"`
		} `xml:"Item"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Equal(t, sampleListing().Description, parsed.Item.Description)
	assert.Equal(t, sampleListing().Title, parsed.Item.Title)
}

func TestRenderDropsCharactersXMLCannotCarry(t *testing.T) {
	l := &Listing{
		Title:       "Phone\x00 case",
		Description: "a\x01b\x0bc\tline\nend \u00e9 \U0001F600",
		CategoryID:  "1",
		SKU:         "S\x1fKU",
		Specifics:   []NameValue{{Name: "Brand", Value: "Ac\x02me"}},
	}
	out, err := testSerializer().Render(l, "legacy-token")
	require.NoError(t, err)

	dec := xml.NewDecoder(bytes.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	var parsed struct {
		Item struct {
			Title       string `xml:"Title"`
			Description string `xml:"Description"`
			SKU         string `xml:"SKU"`
			Specifics   []struct {
				Value string `xml:"Value"`
			} `xml:"ItemSpecifics>NameValueList"`
		} `xml:"Item"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Equal(t, "Phone case", parsed.Item.Title)
	assert.Equal(t, "abc\tline\nend \u00e9 \U0001F600", parsed.Item.Description)
	assert.Equal(t, "SKU", parsed.Item.SKU)
	require.Len(t, parsed.Item.Specifics, 1)
	assert.Equal(t, "Acme", parsed.Item.Specifics[0].Value)
}

func TestRenderStructure(t *testing.T) {
	out, err := testSerializer().Render(sampleListing(), "legacy-token")
	require.NoError(t, err)

	var parsed struct {
		XMLName     xml.Name
		AuthToken   string `xml:"RequesterCredentials>eBayAuthToken"`
		CategoryID  string `xml:"Item>PrimaryCategory>CategoryID"`
		Quantity    string `xml:"Item>Quantity"`
		ConditionID string `xml:"Item>ConditionID"`
		Location    string `xml:"Item>Location"`
		Shipping    string `xml:"Item>SellerProfiles>SellerShippingProfile>ShippingProfileID"`
		Return      string `xml:"Item>SellerProfiles>SellerReturnProfile>ReturnProfileID"`
		Payment     string `xml:"Item>SellerProfiles>SellerPaymentProfile>PaymentProfileID"`
		Specifics   []struct {
			Name  string `xml:"Name"`
			Value string `xml:"Value"`
		} `xml:"Item>ItemSpecifics>NameValueList"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))

	assert.Equal(t, TradingNamespace, parsed.XMLName.Space)
	assert.Equal(t, "AddItemRequest", parsed.XMLName.Local)
	assert.Equal(t, "legacy-token", parsed.AuthToken)
	assert.Equal(t, "9355", parsed.CategoryID)
	assert.Equal(t, "1", parsed.Quantity)
	assert.Equal(t, ConditionUsed, parsed.ConditionID)
	assert.Equal(t, "United States", parsed.Location)
	assert.Equal(t, "ship-1", parsed.Shipping)
	assert.Equal(t, "ret-2", parsed.Return)
	assert.Equal(t, "pay-3", parsed.Payment)
	require.Len(t, parsed.Specifics, 1)
	assert.Equal(t, "Brand", parsed.Specifics[0].Name)
	assert.Equal(t, "Acme", parsed.Specifics[0].Value)
}

func TestRenderOAuthCredentialStaysOutOfBody(t *testing.T) {
	out, err := testSerializer().Render(sampleListing(), "v^1.1#i^1#secret")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "RequesterCredentials")
	assert.NotContains(t, string(out), "secret")
}

func TestRenderOmitsEmptyOptionalBlocks(t *testing.T) {
	l := sampleListing()
	l.ImageURLs = nil
	l.Specifics = nil
	out, err := testSerializer().Render(l, "tok")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "PictureDetails")
	assert.NotContains(t, string(out), "ItemSpecifics")
}

func TestRenderRejects(t *testing.T) {
	s := testSerializer()

	_, err := s.Render(sampleListing(), "  ")
	assert.ErrorIs(t, err, ErrMissingCredential)

	l := sampleListing()
	l.Title = strings.Repeat("x", MaxTitleLength+1)
	_, err = s.Render(l, "tok")
	assert.ErrorContains(t, err, "limit is 80")

	l.Title = strings.Repeat("é", MaxTitleLength)
	_, err = s.Render(l, "tok")
	assert.NoError(t, err)
}

func TestMissingRequired(t *testing.T) {
	l := &Listing{Title: "t", Description: "  ", CategoryID: ""}
	assert.ElementsMatch(t, []string{"description", "category"}, l.MissingRequired())

	l = &Listing{Title: "t", Description: "d", CategoryID: "1"}
	assert.Empty(t, l.MissingRequired())
}

func TestSetSpecificIfAbsent(t *testing.T) {
	l := &Listing{}
	l.SetSpecificIfAbsent("Brand", "Acme")
	l.SetSpecificIfAbsent("brand", "Other")
	l.SetSpecificIfAbsent("Color", "  ")
	assert.Equal(t, []NameValue{{Name: "Brand", Value: "Acme"}}, l.Specifics)
}
