package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedlint/internal/models"
)

func TestGoogleAvailabilityDate(t *testing.T) {
	v := newTestValidator(t, "google", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"availability": "preorder"}, "")
	dated := findByRule(findings, RuleMissingAvailabilityDate)
	require.Len(t, dated, 1)
	assert.Equal(t, models.SeverityError, dated[0].Severity)

	findings = v.ValidateProduct(1, AttributeMap{
		"availability":      "backorder",
		"availability_date": "2030-01-01",
	}, "")
	assert.Empty(t, findByRule(findings, RuleMissingAvailabilityDate))

	findings = v.ValidateProduct(1, AttributeMap{"availability": "in_stock"}, "")
	assert.Empty(t, findByRule(findings, RuleMissingAvailabilityDate))
}

func TestGoogleShippingDimensions(t *testing.T) {
	v := newTestValidator(t, "google", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"shipping_length": "10 cm",
		"shipping_width":  "5 cm",
	}, "")
	assert.Len(t, findByRule(findings, RuleIncompleteShippingDimensions), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"shipping_length": "10 cm",
		"shipping_width":  "5 cm",
		"shipping_height": "2 cm",
	}, "")
	assert.Empty(t, findByRule(findings, RuleIncompleteShippingDimensions))

	findings = v.ValidateProduct(1, AttributeMap{"title": "x"}, "")
	assert.Empty(t, findByRule(findings, RuleIncompleteShippingDimensions))
}

func TestGoogleHandlingTime(t *testing.T) {
	v := newTestValidator(t, "google", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"min_handling_time": "5",
		"max_handling_time": "2",
	}, "")
	assert.Len(t, findByRule(findings, RuleHandlingTimeConflict), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"min_handling_time": "1",
		"max_handling_time": "3",
	}, "")
	assert.Empty(t, findByRule(findings, RuleHandlingTimeConflict))
}

func TestGoogleSuggestionCap(t *testing.T) {
	v := newTestValidator(t, "google", mapResolver{})

	// A product missing everything optional can earn at most 4 suggestions.
	findings := v.ValidateProduct(1, AttributeMap{"title": "Widget", "description": "short"}, "")
	suggestions := 0
	for _, f := range findings {
		switch f.Rule {
		case RuleSuggestMissingGTIN, RuleSuggestAdditionalImages, RuleSuggestMissingCategory,
			RuleSuggestShortDescription, RuleSuggestMissingBrand:
			suggestions++
		}
	}
	assert.Equal(t, 4, suggestions)
}

func TestFacebookCategoryAndAvailability(t *testing.T) {
	v := newTestValidator(t, "facebook", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"availability": "in stock"}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidEnumValue))
	assert.Len(t, findByRule(findings, RuleMissingCategory), 1)

	// The spelling variant in_stock normalizes into Facebook vocabulary.
	findings = v.ValidateProduct(1, AttributeMap{
		"availability":        "in_stock",
		"fb_product_category": "clothing accessories",
	}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidEnumValue))
	assert.Empty(t, findByRule(findings, RuleMissingCategory))
}

func TestFacebookRestrictedHTMLIsError(t *testing.T) {
	v := newTestValidator(t, "facebook", mapResolver{})
	findings := v.ValidateProduct(1, AttributeMap{
		"description": "Great product <script>alert(1)</script>",
	}, "")
	html := findByRule(findings, RuleRestrictedHTML)
	require.Len(t, html, 1)
	assert.Equal(t, models.SeverityError, html[0].Severity)

	// Google only warns for the same content.
	g := newTestValidator(t, "google", mapResolver{})
	findings = g.ValidateProduct(1, AttributeMap{
		"description": "Great product <script>alert(1)</script>",
	}, "")
	html = findByRule(findings, RuleRestrictedHTML)
	require.Len(t, html, 1)
	assert.Equal(t, models.SeverityWarning, html[0].Severity)
}

func TestFacebookImageExtension(t *testing.T) {
	v := newTestValidator(t, "facebook", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"image_link": "https://cdn.example.com/p.svg",
	}, "")
	assert.Len(t, findByRule(findings, RuleImageExtension), 1)

	// Query strings do not defeat the extension check.
	findings = v.ValidateProduct(1, AttributeMap{
		"image_link": "https://cdn.example.com/p.jpg?v=2",
	}, "")
	assert.Empty(t, findByRule(findings, RuleImageExtension))
}

func TestInstagramProhibitedContent(t *testing.T) {
	v := newTestValidator(t, "instagram", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"title":       "Vintage tobacco pipe",
		"description": "Replica firearm display piece",
	}, "")
	prohibited := findByRule(findings, RuleProhibitedContent)
	require.Len(t, prohibited, 2)
	for _, f := range prohibited {
		assert.Equal(t, models.SeverityError, f.Severity)
	}

	findings = v.ValidateProduct(1, AttributeMap{
		"title": "Ceramic coffee mug",
	}, "")
	assert.Empty(t, findByRule(findings, RuleProhibitedContent))
}

func TestInstagramEmoji(t *testing.T) {
	v := newTestValidator(t, "instagram", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"title": "Mug \U0001F525\U0001F525\U0001F525"}, "")
	assert.Len(t, findByRule(findings, RuleExcessiveEmoji), 1)

	findings = v.ValidateProduct(1, AttributeMap{"title": "Mug \U0001F525\U0001F525"}, "")
	assert.Empty(t, findByRule(findings, RuleExcessiveEmoji))
}

func TestTikTokPriceToken(t *testing.T) {
	v := newTestValidator(t, "tiktok", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"price": "12.99 USD"}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidPriceFormat))

	// TikTok accepts a comma decimal separator.
	findings = v.ValidateProduct(1, AttributeMap{"price": "12,99 EUR"}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidPriceFormat))

	findings = v.ValidateProduct(1, AttributeMap{"price": "12.99"}, "")
	assert.Len(t, findByRule(findings, RuleInvalidPriceFormat), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"price":      "12.99 USD",
		"sale_price": "$9.99",
	}, "")
	bad := findByRule(findings, RuleInvalidPriceFormat)
	require.Len(t, bad, 1)
	assert.Equal(t, "sale_price", bad[0].Attribute)
}

func TestPinterestPriceToken(t *testing.T) {
	v := newTestValidator(t, "pinterest", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"price": "12.99 USD"}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidPriceFormat))

	// Pinterest requires exactly two decimals and a dot separator.
	for _, price := range []string{"12.9 USD", "12,99 EUR", "13 USD"} {
		findings = v.ValidateProduct(1, AttributeMap{"price": price}, "")
		assert.Len(t, findByRule(findings, RuleInvalidPriceFormat), 1, price)
	}
}

func TestYandexRequiredAndCurrency(t *testing.T) {
	v := newTestValidator(t, "yandex", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{}, "")
	missing := findByRule(findings, RuleRequiredAttributeEmpty)
	attrs := map[string]bool{}
	for _, f := range missing {
		attrs[f.Attribute] = true
	}
	for _, attr := range []string{"name", "url", "price", "currencyid", "picture", "available"} {
		assert.True(t, attrs[attr], attr)
	}

	// currencyId is case sensitive.
	findings = v.ValidateProduct(1, AttributeMap{"currencyid": "rub"}, "")
	assert.Len(t, findByRule(findings, RuleInvalidEnumValue), 1)

	findings = v.ValidateProduct(1, AttributeMap{"currencyid": "RUB"}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidEnumValue))
}

func TestYandexOldPrice(t *testing.T) {
	v := newTestValidator(t, "yandex", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"price": "100", "oldprice": "90"}, "")
	bad := findByRule(findings, RuleOldPriceNotHigher)
	require.Len(t, bad, 1)
	assert.Equal(t, models.SeverityError, bad[0].Severity)

	// Equal is still invalid: oldprice must be strictly higher.
	findings = v.ValidateProduct(1, AttributeMap{"price": "100", "oldprice": "100"}, "")
	assert.Len(t, findByRule(findings, RuleOldPriceNotHigher), 1)

	findings = v.ValidateProduct(1, AttributeMap{"price": "100", "oldprice": "150"}, "")
	assert.Empty(t, findByRule(findings, RuleOldPriceNotHigher))
}

func TestYandexAvailabilityFlags(t *testing.T) {
	v := newTestValidator(t, "yandex", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"available": "false",
		"delivery":  "true",
		"pickup":    "false",
		"store":     "true",
	}, "")
	conflicts := findByRule(findings, RuleAvailabilityFlags)
	require.Len(t, conflicts, 2)

	findings = v.ValidateProduct(1, AttributeMap{
		"available": "true",
		"delivery":  "true",
	}, "")
	assert.Empty(t, findByRule(findings, RuleAvailabilityFlags))
}

func TestYandexVendorModelPair(t *testing.T) {
	v := newTestValidator(t, "yandex", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"vendor": "Acme"}, "")
	pair := findByRule(findings, RuleVendorModelPair)
	require.Len(t, pair, 1)
	assert.Equal(t, "model", pair[0].Attribute)

	findings = v.ValidateProduct(1, AttributeMap{"model": "X-1"}, "")
	pair = findByRule(findings, RuleVendorModelPair)
	require.Len(t, pair, 1)
	assert.Equal(t, "vendor", pair[0].Attribute)

	findings = v.ValidateProduct(1, AttributeMap{"vendor": "Acme", "model": "X-1"}, "")
	assert.Empty(t, findByRule(findings, RuleVendorModelPair))
}

func TestOpenAICheckoutRequiresSearch(t *testing.T) {
	v := newTestValidator(t, "openai", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"enable_search":   "false",
		"enable_checkout": "true",
	}, "")
	bad := findByRule(findings, RuleCheckoutRequiresSearch)
	require.Len(t, bad, 1)
	assert.Equal(t, models.SeverityError, bad[0].Severity)

	findings = v.ValidateProduct(1, AttributeMap{
		"enable_search":   "true",
		"enable_checkout": "true",
	}, "")
	assert.Empty(t, findByRule(findings, RuleCheckoutRequiresSearch))

	// checkout off never triggers the rule regardless of search.
	findings = v.ValidateProduct(1, AttributeMap{
		"enable_search":   "false",
		"enable_checkout": "false",
	}, "")
	assert.Empty(t, findByRule(findings, RuleCheckoutRequiresSearch))

	findings = v.ValidateProduct(1, AttributeMap{"enable_checkout": "maybe"}, "")
	assert.Len(t, findByRule(findings, RuleInvalidFlagValue), 1)
}

func TestOpenAISalePriceDate(t *testing.T) {
	v := newTestValidator(t, "openai", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"sale_price": "9.99 USD"}, "")
	assert.Len(t, findByRule(findings, RuleMissingSalePriceDate), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"sale_price":                "9.99 USD",
		"sale_price_effective_date": "2026-09-01T00:00:00Z/2026-09-30T00:00:00Z",
	}, "")
	assert.Empty(t, findByRule(findings, RuleMissingSalePriceDate))
}

func TestOpenAIGeoPricing(t *testing.T) {
	v := newTestValidator(t, "openai", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{"geo_price": "9.99 USD"}, "")
	assert.Len(t, findByRule(findings, RuleInvalidGeoRegion), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"geo_price":  "9.99 USD",
		"geo_region": "germany",
	}, "")
	assert.Len(t, findByRule(findings, RuleInvalidGeoRegion), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"geo_price":  "9.99 USD",
		"geo_region": "DE",
	}, "")
	assert.Empty(t, findByRule(findings, RuleInvalidGeoRegion))
}

func TestOpenAIStaleDates(t *testing.T) {
	v := newTestValidator(t, "openai", mapResolver{})
	past := time.Now().AddDate(-1, 0, 0).Format("2006-01-02")
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	findings := v.ValidateProduct(1, AttributeMap{
		"availability":      "preorder",
		"availability_date": past,
		"expiration_date":   past,
	}, "")
	assert.Len(t, findByRule(findings, RuleAvailabilityDateInPast), 1)
	assert.Len(t, findByRule(findings, RuleExpirationDateInPast), 1)

	findings = v.ValidateProduct(1, AttributeMap{
		"availability":      "preorder",
		"availability_date": future,
		"expiration_date":   future,
	}, "")
	assert.Empty(t, findByRule(findings, RuleAvailabilityDateInPast))
	assert.Empty(t, findByRule(findings, RuleExpirationDateInPast))
}

func TestOpenAIURLSeverities(t *testing.T) {
	v := newTestValidator(t, "openai", mapResolver{})

	findings := v.ValidateProduct(1, AttributeMap{
		"link":                  "http://shop.example.com/p",
		"image_link":            "http://cdn.example.com/p.jpg",
		"checkout_link":         "http://shop.example.com/checkout",
		"seller_privacy_policy": "http://shop.example.com/privacy",
		"seller_tos":            "http://shop.example.com/tos",
		"return_policy":         "http://shop.example.com/returns",
	}, "")

	severities := map[string]models.Severity{}
	for _, f := range findByRule(findings, RuleURLNotHTTPS) {
		severities[f.Attribute] = f.Severity
	}
	assert.Equal(t, models.SeverityWarning, severities["link"])
	assert.Equal(t, models.SeverityWarning, severities["image_link"])
	assert.Equal(t, models.SeverityWarning, severities["checkout_link"])
	assert.Equal(t, models.SeverityInfo, severities["seller_privacy_policy"])
	assert.Equal(t, models.SeverityInfo, severities["seller_tos"])
	assert.Equal(t, models.SeverityInfo, severities["return_policy"])
}
