package validation

import (
	"fmt"
	"regexp"

	"feedlint/internal/models"
)

// Google-specific rule identifiers.
const (
	RuleMissingCategory              = "missing_category"
	RuleMissingAvailabilityDate      = "missing_availability_date"
	RuleIncompleteShippingDimensions = "incomplete_shipping_dimensions"
	RuleHandlingTimeConflict         = "handling_time_conflict"
)

// googleValidator implements the Google Shopping feed specification.
type googleValidator struct {
	rules *RuleSet
}

func newGoogle() MerchantRules {
	return &googleValidator{rules: googleRules}
}

var googleRules = &RuleSet{
	Required: map[string]RequiredRule{
		"id":          {Severity: models.SeverityError, Description: "unique product identifier"},
		"title":       {Severity: models.SeverityError, Description: "product title"},
		"description": {Severity: models.SeverityError, Description: "product description"},
		"link":        {Severity: models.SeverityError, Description: "product landing page"},
		"image_link":  {Severity: models.SeverityError, Description: "main product image"},
		"price":       {Severity: models.SeverityError, Description: "product price with currency"},
		"availability": {
			Severity:    models.SeverityError,
			Description: "stock availability",
		},
		"brand":     {Severity: models.SeverityWarning, Description: "product brand"},
		"condition": {Severity: models.SeverityWarning, Description: "product condition"},
	},
	Limits: map[string]LimitRule{
		"id":                      {Max: 50, Severity: models.SeverityError},
		"title":                   {Max: 150, Severity: models.SeverityError},
		"description":             {Max: 5000, Severity: models.SeverityError},
		"link":                    {Max: 2000, Severity: models.SeverityError},
		"brand":                   {Max: 70, Severity: models.SeverityWarning},
		"mpn":                     {Max: 70, Severity: models.SeverityWarning},
		"product_type":            {Max: 750, Severity: models.SeverityWarning},
		"custom_label_0":          {Max: 100, Severity: models.SeverityWarning},
		"google_product_category": {Max: 750, Severity: models.SeverityWarning},
	},
	Enums: map[string]EnumRule{
		"availability": {
			Values:   []string{"in_stock", "out_of_stock", "preorder", "backorder"},
			Severity: models.SeverityError,
		},
		"condition": {
			Values:   []string{"new", "refurbished", "used"},
			Severity: models.SeverityError,
		},
		"age_group": {
			Values:   []string{"newborn", "infant", "toddler", "kids", "adult"},
			Severity: models.SeverityWarning,
		},
		"gender": {
			Values:   []string{"male", "female", "unisex"},
			Severity: models.SeverityWarning,
		},
		"identifier_exists": {
			Values:   []string{"yes", "no", "true", "false"},
			Severity: models.SeverityWarning,
		},
	},
	Formats: map[string]FormatRule{
		"price":                 {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"sale_price":            {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"link":                  {Type: FormatURL, Severity: models.SeverityError, Description: "product landing page URL"},
		"image_link":            {Type: FormatURL, Severity: models.SeverityError, Description: "main image URL"},
		"additional_image_link": {Type: FormatURL, Severity: models.SeverityWarning, Description: "additional image URL"},
		"multipack":             {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "number of units"},
		"item_group_id": {
			Pattern:     regexp.MustCompile(`^[\w-]+$`),
			Severity:    models.SeverityWarning,
			Description: "alphanumeric group identifier",
		},
	},
}

func (g *googleValidator) Merchant() string          { return "google" }
func (g *googleValidator) Rules() *RuleSet           { return g.rules }
func (g *googleValidator) PriceAttributes() []string { return DefaultPriceAttributes() }

func (g *googleValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(4)

	pc.CheckIdentifiers(models.SeverityError, models.SeverityError)
	g.checkCategory(pc)
	pc.CheckImageQuality("image_link", models.SeverityInfo, nil)
	pc.CheckURLSecurity("link", models.SeverityInfo)
	pc.CheckPricePair("price", "sale_price")
	g.checkAvailabilityDate(pc)
	g.checkShippingDimensions(pc)
	g.checkHandlingTime(pc)
	pc.CheckVariantGrouping(false)
	pc.CheckApparelAttributes()
	pc.CheckTitleQuality()
	pc.CheckDescriptionQuality(models.SeverityWarning)
	g.suggestOptimizations(pc)
}

func (g *googleValidator) checkCategory(pc *ProductContext) {
	if pc.Has("google_product_category") || pc.Has("product_type") {
		return
	}
	pc.Add("google_product_category", RuleMissingCategory, models.SeverityWarning, nil,
		"Provide google_product_category or product_type so the product can be classified")
}

// availability_date is mandatory for preorder and backorder listings.
func (g *googleValidator) checkAvailabilityDate(pc *ProductContext) {
	availability, ok := NormalizeAvailability(pc.Attr("availability"), "google")
	if !ok {
		return
	}
	if availability != "preorder" && availability != "backorder" {
		return
	}
	if !pc.Has("availability_date") {
		pc.Add("availability_date", RuleMissingAvailabilityDate, models.SeverityError, nil,
			fmt.Sprintf("availability_date is required when availability is %q", availability))
	}
}

// Shipping dimensions are all-or-nothing: Google rejects partial triples.
func (g *googleValidator) checkShippingDimensions(pc *ProductContext) {
	dims := []string{"shipping_length", "shipping_width", "shipping_height"}
	set := 0
	for _, d := range dims {
		if pc.Has(d) {
			set++
		}
	}
	if set > 0 && set < len(dims) {
		pc.Add("shipping_length", RuleIncompleteShippingDimensions, models.SeverityError, nil,
			"Provide all of shipping_length, shipping_width and shipping_height, or none")
	}
}

func (g *googleValidator) checkHandlingTime(pc *ProductContext) {
	minRaw, maxRaw := pc.Attr("min_handling_time"), pc.Attr("max_handling_time")
	if minRaw == "" || maxRaw == "" {
		return
	}
	min, okMin := NumericValue(minRaw)
	max, okMax := NumericValue(maxRaw)
	if okMin && okMax && min > max {
		pc.Add("min_handling_time", RuleHandlingTimeConflict, models.SeverityError, &minRaw,
			fmt.Sprintf("min_handling_time (%s) exceeds max_handling_time (%s)", minRaw, maxRaw))
	}
}

// Fixed priority order; the cap short-circuits the chain.
func (g *googleValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("gtin") {
		if !pc.AddSuggestion("gtin", RuleSuggestMissingGTIN,
			"Adding a GTIN improves matching and unlocks more placement surfaces") {
			return
		}
	}
	if !pc.Has("additional_image_link") {
		if !pc.AddSuggestion("additional_image_link", RuleSuggestAdditionalImages,
			"Listings with multiple images get more engagement") {
			return
		}
	}
	if !pc.Has("google_product_category") {
		if !pc.AddSuggestion("google_product_category", RuleSuggestMissingCategory,
			"An explicit Google product category improves ad targeting") {
			return
		}
	}
	if desc := pc.Attr("description"); desc != "" && RuneLen(desc) < 160 {
		if !pc.AddSuggestion("description", RuleSuggestShortDescription,
			"Descriptions under 160 characters tend to underperform; add detail") {
			return
		}
	}
	if !pc.Has("brand") {
		pc.AddSuggestion("brand", RuleSuggestMissingBrand,
			"Adding a brand improves search relevance")
	}
}
