package validation

import (
	"regexp"

	"feedlint/internal/models"
)

// pinterestValidator implements the Pinterest catalog specification. The
// check chain mirrors TikTok's; the price token regex and character limits
// differ.
type pinterestValidator struct {
	rules *RuleSet
}

func newPinterest() MerchantRules {
	return &pinterestValidator{rules: pinterestRules}
}

// Pinterest requires two decimal places in the amount token.
var pinterestPricePattern = regexp.MustCompile(`^\d+(?:\.\d{2})\s[A-Z]{3}$`)

var pinterestRules = &RuleSet{
	Required: map[string]RequiredRule{
		"id":           {Severity: models.SeverityError, Description: "unique product identifier"},
		"title":        {Severity: models.SeverityError, Description: "product title"},
		"description":  {Severity: models.SeverityError, Description: "product description"},
		"availability": {Severity: models.SeverityError, Description: "stock availability"},
		"price":        {Severity: models.SeverityError, Description: "product price with currency"},
		"link":         {Severity: models.SeverityError, Description: "product landing page"},
		"image_link":   {Severity: models.SeverityError, Description: "main product image"},
	},
	Limits: map[string]LimitRule{
		"id":          {Max: 127, Severity: models.SeverityError},
		"title":       {Max: 500, Severity: models.SeverityWarning},
		"description": {Max: 10000, Severity: models.SeverityWarning},
		"brand":       {Max: 127, Severity: models.SeverityWarning},
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
		"price":      {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "amount followed by currency code"},
		"sale_price": {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "amount followed by currency code"},
		"link":       {Type: FormatURL, Severity: models.SeverityError, Description: "product landing page URL"},
		"image_link": {Type: FormatURL, Severity: models.SeverityError, Description: "main image URL"},
	},
}

func (p *pinterestValidator) Merchant() string          { return "pinterest" }
func (p *pinterestValidator) Rules() *RuleSet           { return p.rules }
func (p *pinterestValidator) PriceAttributes() []string { return DefaultPriceAttributes() }

func (p *pinterestValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(3)

	pc.CheckIdentifiers(models.SeverityWarning, models.SeverityWarning)
	checkPriceToken(pc, pinterestPricePattern)
	pc.CheckImageQuality("image_link", models.SeverityInfo, nil)
	pc.CheckURLSecurity("link", models.SeverityInfo)
	pc.CheckPricePair("price", "sale_price")
	pc.CheckVariantGrouping(true)
	pc.CheckApparelAttributes()
	pc.CheckTitleQuality()
	pc.CheckDescriptionQuality(models.SeverityWarning)
	p.suggestOptimizations(pc)
}

func (p *pinterestValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("gtin") {
		if !pc.AddSuggestion("gtin", RuleSuggestMissingGTIN,
			"Adding a GTIN improves product matching") {
			return
		}
	}
	if !pc.Has("additional_image_link") {
		if !pc.AddSuggestion("additional_image_link", RuleSuggestAdditionalImages,
			"Pins with multiple images get more saves") {
			return
		}
	}
	if !pc.Has("google_product_category") {
		pc.AddSuggestion("google_product_category", RuleSuggestMissingCategory,
			"A product category improves distribution across surfaces")
	}
}
