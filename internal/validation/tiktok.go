package validation

import (
	"fmt"
	"regexp"

	"feedlint/internal/models"
)

// Shared by TikTok and Pinterest, which submit prices as "amount CURRENCY".
const RuleInvalidPriceFormat = "invalid_price_format"

// tiktokValidator implements the TikTok Shop catalog specification.
type tiktokValidator struct {
	rules *RuleSet
}

func newTikTok() MerchantRules {
	return &tiktokValidator{rules: tiktokRules}
}

// TikTok submits prices as "12.99 USD".
var tiktokPricePattern = regexp.MustCompile(`^\d+(?:[.,]\d+)?\s[A-Z]{3}$`)

var tiktokRules = &RuleSet{
	Required: map[string]RequiredRule{
		"sku_id":       {Severity: models.SeverityError, Description: "SKU identifier"},
		"title":        {Severity: models.SeverityError, Description: "product title"},
		"description":  {Severity: models.SeverityError, Description: "product description"},
		"availability": {Severity: models.SeverityError, Description: "stock availability"},
		"price":        {Severity: models.SeverityError, Description: "product price with currency"},
		"link":         {Severity: models.SeverityError, Description: "product landing page"},
		"image_link":   {Severity: models.SeverityError, Description: "main product image"},
	},
	Limits: map[string]LimitRule{
		"sku_id":      {Max: 50, Severity: models.SeverityError},
		"title":       {Min: 1, Max: 255, Severity: models.SeverityWarning},
		"description": {Max: 10000, Severity: models.SeverityWarning},
		"brand":       {Max: 100, Severity: models.SeverityWarning},
	},
	Enums: map[string]EnumRule{
		"availability": {
			Values:   []string{"in_stock", "out_of_stock", "preorder"},
			Severity: models.SeverityError,
		},
		"condition": {
			Values:   []string{"new", "refurbished", "used"},
			Severity: models.SeverityWarning,
		},
	},
	Formats: map[string]FormatRule{
		"price":      {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "amount followed by currency code"},
		"sale_price": {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "amount followed by currency code"},
		"link":       {Type: FormatURL, Severity: models.SeverityError, Description: "product landing page URL"},
		"image_link": {Type: FormatURL, Severity: models.SeverityError, Description: "main image URL"},
	},
}

func (t *tiktokValidator) Merchant() string          { return "tiktok" }
func (t *tiktokValidator) Rules() *RuleSet           { return t.rules }
func (t *tiktokValidator) PriceAttributes() []string { return DefaultPriceAttributes() }

func (t *tiktokValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(3)

	pc.CheckIdentifiers(models.SeverityWarning, models.SeverityWarning)
	checkPriceToken(pc, tiktokPricePattern)
	pc.CheckImageQuality("image_link", models.SeverityInfo, nil)
	pc.CheckURLSecurity("link", models.SeverityInfo)
	pc.CheckPricePair("price", "sale_price")
	pc.CheckVariantGrouping(true)
	pc.CheckApparelAttributes()
	pc.CheckTitleQuality()
	pc.CheckDescriptionQuality(models.SeverityWarning)
	t.suggestOptimizations(pc)
}

// checkPriceToken validates the "amount CURRENCY" token shape TikTok and
// Pinterest require, on top of the positive-amount check the format stage
// already ran.
func checkPriceToken(pc *ProductContext, pattern *regexp.Regexp) {
	for _, attr := range []string{"price", "sale_price"} {
		value := pc.Attr(attr)
		if value == "" {
			continue
		}
		if !pattern.MatchString(value) {
			pc.Add(attr, RuleInvalidPriceFormat, models.SeverityWarning, &value,
				fmt.Sprintf("%q should look like \"12.99 USD\", got %q", attr, value))
		}
	}
}

func (t *tiktokValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("gtin") {
		if !pc.AddSuggestion("gtin", RuleSuggestMissingGTIN,
			"Adding a GTIN improves product matching") {
			return
		}
	}
	if !pc.Has("additional_image_link") {
		if !pc.AddSuggestion("additional_image_link", RuleSuggestAdditionalImages,
			"Products with multiple images convert better") {
			return
		}
	}
	if !pc.Has("product_type") {
		pc.AddSuggestion("product_type", RuleSuggestMissingProductType,
			"A product type helps TikTok place the listing in the right category")
	}
}
