package validation

import (
	"fmt"
	"time"

	"feedlint/internal/models"
)

// OpenAI commerce feed rule identifiers.
const (
	RuleCheckoutRequiresSearch = "checkout_requires_search"
	RuleMissingSalePriceDate   = "missing_sale_price_effective_date"
	RuleInvalidGeoRegion       = "invalid_geo_region"
	RuleAvailabilityDateInPast = "availability_date_in_past"
	RuleExpirationDateInPast   = "expiration_date_in_past"
	RuleInvalidFlagValue       = "invalid_flag_value"
	RuleSuggestEnableCheckout  = "suggest_enable_checkout"
)

// openaiURLFields are the URL-bearing attributes checked for HTTPS, with the
// severity a plain-http value earns. Product and checkout links are warnings;
// policy URLs are informational. image_link goes through the image quality
// check instead, at warning severity.
var openaiURLFields = []struct {
	attr     string
	severity models.Severity
}{
	{"link", models.SeverityWarning},
	{"checkout_link", models.SeverityWarning},
	{"seller_privacy_policy", models.SeverityInfo},
	{"seller_tos", models.SeverityInfo},
	{"return_policy", models.SeverityInfo},
}

// openaiValidator implements the OpenAI commerce feed specification
// (product discovery in ChatGPT, optional instant checkout).
type openaiValidator struct {
	rules *RuleSet
}

func newOpenAI() MerchantRules {
	return &openaiValidator{rules: openaiRules}
}

var openaiRules = &RuleSet{
	Required: map[string]RequiredRule{
		"id":            {Severity: models.SeverityError, Description: "unique product identifier"},
		"title":         {Severity: models.SeverityError, Description: "product title"},
		"description":   {Severity: models.SeverityError, Description: "product description"},
		"link":          {Severity: models.SeverityError, Description: "product landing page"},
		"image_link":    {Severity: models.SeverityError, Description: "main product image"},
		"price":         {Severity: models.SeverityError, Description: "product price with currency"},
		"availability":  {Severity: models.SeverityError, Description: "stock availability"},
		"enable_search": {Severity: models.SeverityWarning, Description: "search opt-in flag"},
		"seller_name":   {Severity: models.SeverityWarning, Description: "merchant display name"},
	},
	Limits: map[string]LimitRule{
		"id":          {Max: 100, Severity: models.SeverityError},
		"title":       {Max: 150, Severity: models.SeverityWarning},
		"description": {Max: 5000, Severity: models.SeverityWarning},
		"seller_name": {Max: 100, Severity: models.SeverityWarning},
	},
	Enums: map[string]EnumRule{
		"availability": {
			Values:   []string{"in_stock", "out_of_stock", "preorder", "backorder"},
			Severity: models.SeverityError,
		},
		"condition": {
			Values:   []string{"new", "refurbished", "used"},
			Severity: models.SeverityWarning,
		},
	},
	Formats: map[string]FormatRule{
		"price":      {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"sale_price": {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"link":       {Type: FormatURL, Severity: models.SeverityError, Description: "product landing page URL"},
		"image_link": {Type: FormatURL, Severity: models.SeverityError, Description: "main image URL"},
	},
}

func (o *openaiValidator) Merchant() string          { return "openai" }
func (o *openaiValidator) Rules() *RuleSet           { return o.rules }
func (o *openaiValidator) PriceAttributes() []string { return DefaultPriceAttributes() }

func (o *openaiValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(5)

	pc.CheckIdentifiers(models.SeverityWarning, models.SeverityWarning)
	o.checkFlags(pc)
	o.checkSalePriceDate(pc)
	o.checkGeoPricing(pc)
	o.checkURLSecurity(pc)
	o.checkDates(pc)
	pc.CheckPricePair("price", "sale_price")
	pc.CheckImageQuality("image_link", models.SeverityWarning, nil)
	pc.CheckTitleQuality()
	pc.CheckDescriptionQuality(models.SeverityWarning)
	o.suggestOptimizations(pc)
}

// enable_checkout=true without enable_search=true is rejected outright: a
// product cannot be purchasable but undiscoverable.
func (o *openaiValidator) checkFlags(pc *ProductContext) {
	checkoutRaw := pc.Attr("enable_checkout")
	if checkoutRaw == "" {
		return
	}
	checkout, ok := NormalizeBoolean(checkoutRaw)
	if !ok {
		pc.Add("enable_checkout", RuleInvalidFlagValue, models.SeverityWarning, &checkoutRaw,
			fmt.Sprintf("enable_checkout has ambiguous value %q", checkoutRaw))
		return
	}
	if !checkout {
		return
	}
	search, ok := NormalizeBoolean(pc.Attr("enable_search"))
	if !ok || !search {
		pc.Add("enable_checkout", RuleCheckoutRequiresSearch, models.SeverityError, &checkoutRaw,
			"enable_checkout requires enable_search to be true")
	}
}

func (o *openaiValidator) checkSalePriceDate(pc *ProductContext) {
	if !pc.Has("sale_price") {
		return
	}
	if !pc.Has("sale_price_effective_date") {
		pc.Add("sale_price_effective_date", RuleMissingSalePriceDate, models.SeverityError, nil,
			"sale_price requires sale_price_effective_date")
	}
}

// Geo-priced entries must carry an ISO-3166 alpha-2 region.
func (o *openaiValidator) checkGeoPricing(pc *ProductContext) {
	if !pc.Has("geo_price") {
		return
	}
	region := pc.Attr("geo_region")
	if region == "" || !IsISORegionCode(region) {
		pc.Add("geo_region", RuleInvalidGeoRegion, models.SeverityError, &region,
			fmt.Sprintf("geo_price requires an ISO-3166 alpha-2 region code, got %q", region))
	}
}

func (o *openaiValidator) checkURLSecurity(pc *ProductContext) {
	for _, field := range openaiURLFields {
		pc.CheckURLSecurity(field.attr, field.severity)
	}
}

var openaiDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseFeedDate(s string) (time.Time, bool) {
	for _, layout := range openaiDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// A preorder availability date or an expiration date in the past means the
// entry is stale.
func (o *openaiValidator) checkDates(pc *ProductContext) {
	now := time.Now()

	availability, _ := NormalizeAvailability(pc.Attr("availability"), "google")
	if availability == "preorder" || availability == "backorder" {
		if raw := pc.Attr("availability_date"); raw != "" {
			if t, ok := parseFeedDate(raw); ok && t.Before(now) {
				pc.Add("availability_date", RuleAvailabilityDateInPast, models.SeverityWarning, &raw,
					fmt.Sprintf("availability_date %q is in the past for a %s product", raw, availability))
			}
		}
	}

	if raw := pc.Attr("expiration_date"); raw != "" {
		if t, ok := parseFeedDate(raw); ok && t.Before(now) {
			pc.Add("expiration_date", RuleExpirationDateInPast, models.SeverityWarning, &raw,
				fmt.Sprintf("expiration_date %q has already passed", raw))
		}
	}
}

func (o *openaiValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("gtin") {
		if !pc.AddSuggestion("gtin", RuleSuggestMissingGTIN,
			"Adding a GTIN improves product grounding in answers") {
			return
		}
	}
	if !pc.Has("enable_checkout") {
		if !pc.AddSuggestion("enable_checkout", RuleSuggestEnableCheckout,
			"Opting into checkout lets buyers purchase without leaving the conversation") {
			return
		}
	}
	if !pc.Has("additional_image_link") {
		if !pc.AddSuggestion("additional_image_link", RuleSuggestAdditionalImages,
			"Products with multiple images present better in rich results") {
			return
		}
	}
	if desc := pc.Attr("description"); desc != "" && RuneLen(desc) < 200 {
		pc.AddSuggestion("description", RuleSuggestShortDescription,
			"Longer descriptions give the model more to ground recommendations on")
	}
}
