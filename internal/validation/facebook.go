package validation

import (
	"feedlint/internal/models"
)

// facebookValidator implements the Facebook (Meta) catalog specification.
// Instagram shopping shares these tables and layers its own content rules on
// top.
type facebookValidator struct {
	rules *RuleSet
}

func newFacebook() MerchantRules {
	return &facebookValidator{rules: facebookRules}
}

var facebookImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff"}

var facebookRules = &RuleSet{
	Required: map[string]RequiredRule{
		"id":           {Severity: models.SeverityError, Description: "content ID"},
		"title":        {Severity: models.SeverityError, Description: "product title"},
		"description":  {Severity: models.SeverityError, Description: "product description"},
		"availability": {Severity: models.SeverityError, Description: "stock availability"},
		"condition":    {Severity: models.SeverityError, Description: "product condition"},
		"price":        {Severity: models.SeverityError, Description: "product price with currency"},
		"link":         {Severity: models.SeverityError, Description: "product landing page"},
		"image_link":   {Severity: models.SeverityError, Description: "main product image"},
		"brand":        {Severity: models.SeverityWarning, Description: "product brand"},
	},
	Limits: map[string]LimitRule{
		"id":          {Max: 100, Severity: models.SeverityError},
		"title":       {Max: 200, Severity: models.SeverityWarning},
		"description": {Max: 9999, Severity: models.SeverityWarning},
		"brand":       {Max: 100, Severity: models.SeverityWarning},
	},
	Enums: map[string]EnumRule{
		"availability": {
			Values:   []string{"in stock", "out of stock", "available for order", "discontinued"},
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
	},
	Formats: map[string]FormatRule{
		"price":      {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"sale_price": {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount with currency"},
		"link":       {Type: FormatURL, Severity: models.SeverityError, Description: "product landing page URL"},
		"image_link": {Type: FormatURL, Severity: models.SeverityError, Description: "main image URL"},
	},
}

func (f *facebookValidator) Merchant() string          { return "facebook" }
func (f *facebookValidator) Rules() *RuleSet           { return f.rules }
func (f *facebookValidator) PriceAttributes() []string { return DefaultPriceAttributes() }

func (f *facebookValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(3)
	f.runSharedValidations(pc)
	f.suggestOptimizations(pc)
}

// runSharedValidations is the Facebook check chain minus the suggestion cap,
// reused verbatim by Instagram.
func (f *facebookValidator) runSharedValidations(pc *ProductContext) {
	pc.CheckIdentifiers(models.SeverityWarning, models.SeverityWarning)
	f.checkCategory(pc)
	pc.CheckImageQuality("image_link", models.SeverityInfo, facebookImageExtensions)
	pc.CheckURLSecurity("link", models.SeverityInfo)
	pc.CheckPricePair("price", "sale_price")
	pc.CheckVariantGrouping(false)
	pc.CheckApparelAttributes()
	pc.CheckTitleQuality()
	// Meta rejects catalogs with embedded active content outright.
	pc.CheckDescriptionQuality(models.SeverityError)
}

func (f *facebookValidator) checkCategory(pc *ProductContext) {
	if pc.Has("fb_product_category") || pc.Has("google_product_category") || pc.Has("product_type") {
		return
	}
	pc.Add("fb_product_category", RuleMissingCategory, models.SeverityWarning, nil,
		"Provide fb_product_category or google_product_category so the product can be classified")
}

func (f *facebookValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("gtin") {
		if !pc.AddSuggestion("gtin", RuleSuggestMissingGTIN,
			"Adding a GTIN improves catalog matching") {
			return
		}
	}
	if !pc.Has("additional_image_link") {
		if !pc.AddSuggestion("additional_image_link", RuleSuggestAdditionalImages,
			"Products with multiple images perform better in dynamic ads") {
			return
		}
	}
	if !pc.Has("fb_product_category") {
		pc.AddSuggestion("fb_product_category", RuleSuggestMissingCategory,
			"An explicit Facebook product category improves ad delivery")
	}
}
