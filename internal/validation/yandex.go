package validation

import (
	"fmt"

	"feedlint/internal/models"
)

// Yandex-specific rule identifiers.
const (
	RuleOldPriceNotHigher = "oldprice_not_higher_than_price"
	RuleAvailabilityFlags = "availability_flag_conflict"
	RuleVendorModelPair   = "vendor_model_incomplete"
)

// yandexCategoryAliases is the fallback list for the category presence
// check, most specific first.
var yandexCategoryAliases = []string{
	"categoryid", "category", "market_category", "product_type", "google_product_category",
}

// yandexValidator implements the Yandex Market YML offer specification. The
// attribute names follow YML verbatim (oldprice, vendor, picture).
type yandexValidator struct {
	rules *RuleSet
}

func newYandex() MerchantRules {
	return &yandexValidator{rules: yandexRules}
}

var yandexRules = &RuleSet{
	Required: map[string]RequiredRule{
		"name":       {Severity: models.SeverityError, Description: "offer name"},
		"url":        {Severity: models.SeverityError, Description: "offer landing page"},
		"price":      {Severity: models.SeverityError, Description: "offer price"},
		"currencyid": {Severity: models.SeverityError, Description: "currency code"},
		"picture":    {Severity: models.SeverityError, Description: "offer image"},
		"available":  {Severity: models.SeverityWarning, Description: "availability flag"},
	},
	Limits: map[string]LimitRule{
		"name":        {Max: 255, Severity: models.SeverityWarning},
		"description": {Max: 3000, Severity: models.SeverityWarning},
		"vendor":      {Max: 255, Severity: models.SeverityWarning},
	},
	Enums: map[string]EnumRule{
		"available": {
			Values:   []string{"true", "false"},
			Severity: models.SeverityWarning,
		},
		"currencyid": {
			Values:        []string{"RUR", "RUB", "USD", "EUR", "UAH", "BYN", "KZT"},
			CaseSensitive: true,
			Severity:      models.SeverityError,
		},
	},
	Formats: map[string]FormatRule{
		"price":    {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount"},
		"oldprice": {Type: FormatNumeric, Severity: models.SeverityWarning, Description: "numeric amount"},
		"url":      {Type: FormatURL, Severity: models.SeverityError, Description: "offer URL"},
		"picture":  {Type: FormatURL, Severity: models.SeverityError, Description: "image URL"},
	},
}

func (y *yandexValidator) Merchant() string { return "yandex" }
func (y *yandexValidator) Rules() *RuleSet  { return y.rules }

// YML prices live in price/oldprice.
func (y *yandexValidator) PriceAttributes() []string { return []string{"price", "oldprice"} }

func (y *yandexValidator) RunCustomValidations(pc *ProductContext) {
	pc.SetSuggestionCap(3)

	y.checkCategory(pc)
	y.checkOldPrice(pc)
	y.checkAvailabilityFlags(pc)
	y.checkVendorModel(pc)
	pc.CheckImageQuality("picture", models.SeverityInfo, nil)
	pc.CheckURLSecurity("url", models.SeverityInfo)
	pc.CheckTitleQuality()
	pc.CheckDescriptionQuality(models.SeverityWarning)
	y.suggestOptimizations(pc)
}

// Category presence is satisfied by any of the five aliases.
func (y *yandexValidator) checkCategory(pc *ProductContext) {
	for _, alias := range yandexCategoryAliases {
		if pc.Has(alias) {
			return
		}
	}
	pc.Add("categoryid", RuleMissingCategory, models.SeverityWarning, nil,
		"Provide categoryId (or a category/product_type fallback) so the offer can be classified")
}

// oldprice is the pre-discount price and must exceed the current price.
func (y *yandexValidator) checkOldPrice(pc *ProductContext) {
	oldRaw := pc.Attr("oldprice")
	if oldRaw == "" {
		return
	}
	old, okOld := NumericValue(oldRaw)
	price, okPrice := NumericValue(pc.Attr("price"))
	if okOld && okPrice && old <= price {
		pc.Add("oldprice", RuleOldPriceNotHigher, models.SeverityError, &oldRaw,
			fmt.Sprintf("oldprice (%s) must be higher than price (%s)", oldRaw, pc.Attr("price")))
	}
}

// delivery/pickup/store flags must be consistent with available=false: an
// unavailable offer that claims delivery or pickup is suspect.
func (y *yandexValidator) checkAvailabilityFlags(pc *ProductContext) {
	available, ok := NormalizeBoolean(pc.Attr("available"))
	if !ok || available {
		return
	}
	for _, flag := range []string{"delivery", "pickup", "store"} {
		raw := pc.Attr(flag)
		if raw == "" {
			continue
		}
		if b, ok := NormalizeBoolean(raw); ok && b {
			pc.Add(flag, RuleAvailabilityFlags, models.SeverityWarning, &raw,
				fmt.Sprintf("%q is true while available is false", flag))
		}
	}
}

// vendor and model describe one catalog entry together; a lone half is
// either a data mapping bug or an incomplete offer.
func (y *yandexValidator) checkVendorModel(pc *ProductContext) {
	hasVendor, hasModel := pc.Has("vendor"), pc.Has("model")
	if hasVendor == hasModel {
		return
	}
	missing := "model"
	if hasModel {
		missing = "vendor"
	}
	pc.Add(missing, RuleVendorModelPair, models.SeverityWarning, nil,
		"vendor and model must be provided together or not at all")
}

func (y *yandexValidator) suggestOptimizations(pc *ProductContext) {
	if !pc.Has("vendor") {
		if !pc.AddSuggestion("vendor", RuleSuggestMissingBrand,
			"Adding a vendor improves offer matching on Market") {
			return
		}
	}
	if !pc.Has("sales_notes") {
		if !pc.AddSuggestion("sales_notes", RuleSuggestShortDescription,
			"sales_notes can surface payment and delivery terms to buyers") {
			return
		}
	}
	if !pc.Has("categoryid") {
		pc.AddSuggestion("categoryid", RuleSuggestMissingCategory,
			"An explicit categoryId places the offer more precisely")
	}
}
