package validation

import (
	"fmt"
	"strings"
	"time"

	"feedlint/internal/models"
)

// ProductContext is the per-product state shared between the base pipeline
// and merchant custom validations. It replaces the ambient caches the checks
// would otherwise need: everything a check reads or writes lives here.
type ProductContext struct {
	ProductID   int
	Title       string
	Attrs       AttributeMap
	IsVariation bool
	ParentID    int

	merchant    MerchantRules
	product     *models.Product
	parentAttrs map[string]string

	findings       []models.Finding
	suggestions    int
	maxSuggestions int
}

// Product returns the resolved product record, or nil when the lookup failed.
func (pc *ProductContext) Product() *models.Product { return pc.product }

// Attr returns the CDATA-stripped scalar value of an attribute, or "" when
// the attribute is absent, empty, or not scalar.
func (pc *ProductContext) Attr(name string) string {
	raw, ok := stringValue(pc.Attrs[name])
	if !ok {
		return ""
	}
	return StripCDATA(raw)
}

// Has reports whether an attribute is present and non-empty.
func (pc *ProductContext) Has(name string) bool {
	v, ok := pc.Attrs[name]
	return ok && !IsEmptyValue(v)
}

// Add appends one finding. rawValue may be nil when no offending value
// exists (e.g. a missing attribute).
func (pc *ProductContext) Add(attribute, rule string, severity models.Severity, rawValue *string, message string) {
	pc.findings = append(pc.findings, models.Finding{
		ProductID:    pc.ProductID,
		ProductTitle: pc.Title,
		Attribute:    attribute,
		Rule:         rule,
		Severity:     severity,
		RawValue:     rawValue,
		Message:      message,
		Merchant:     pc.merchant.Merchant(),
		Timestamp:    time.Now().UTC(),
		IsVariation:  pc.IsVariation,
		ParentID:     pc.ParentID,
	})
}

// SetSuggestionCap bounds how many optimization suggestions this product may
// accumulate. Merchants call this at the start of their custom validations.
func (pc *ProductContext) SetSuggestionCap(max int) { pc.maxSuggestions = max }

// AddSuggestion appends an info-severity optimization suggestion, respecting
// the merchant's cap. Returns false once the cap is reached so callers can
// short-circuit their priority chain.
func (pc *ProductContext) AddSuggestion(attribute, rule, message string) bool {
	if pc.maxSuggestions > 0 && pc.suggestions >= pc.maxSuggestions {
		return false
	}
	pc.Add(attribute, rule, models.SeverityInfo, nil, message)
	pc.suggestions++
	return true
}

// SuggestionCapReached reports whether further suggestions would be dropped.
func (pc *ProductContext) SuggestionCapReached() bool {
	return pc.maxSuggestions > 0 && pc.suggestions >= pc.maxSuggestions
}

// CheckIdentifiers enforces the GTIN/MPN/Brand rule: unless identifier_exists
// is explicitly negative, a product needs a GTIN or both MPN and brand. A
// present GTIN is additionally checked for standard length and checksum at
// the given severities, which differ per merchant.
func (pc *ProductContext) CheckIdentifiers(lengthSeverity, checksumSeverity models.Severity) {
	if flag := pc.Attr("identifier_exists"); flag != "" {
		if b, ok := NormalizeBoolean(flag); ok && !b {
			return
		}
	}

	gtin := pc.Attr("gtin")
	if gtin == "" {
		if pc.Attr("mpn") == "" || pc.Attr("brand") == "" {
			pc.Add("gtin", RuleMissingIdentifiers, models.SeverityWarning, nil,
				"Provide a GTIN, or both MPN and brand, so the product can be matched")
		}
		return
	}

	if !ValidGTINLength(gtin) {
		pc.Add("gtin", RuleInvalidGTINLength, lengthSeverity, &gtin,
			fmt.Sprintf("GTIN %q must have 8, 12, 13 or 14 digits", gtin))
		return
	}
	if !ValidGTINChecksum(gtin) {
		pc.Add("gtin", RuleInvalidGTINChecksum, checksumSeverity, &gtin,
			fmt.Sprintf("GTIN %q fails its check digit", gtin))
	}
}

// CheckPricePair enforces the regular/sale price relation: regular must be
// positive; a positive sale price must be strictly below it.
func (pc *ProductContext) CheckPricePair(regularAttr, saleAttr string) {
	regularRaw := pc.Attr(regularAttr)
	if regularRaw == "" {
		return
	}
	regular, ok := NumericValue(regularRaw)
	if !ok || regular <= 0 {
		pc.Add(regularAttr, RuleRegularPriceInvalid, models.SeverityError, &regularRaw,
			fmt.Sprintf("%q must be greater than zero", regularAttr))
		return
	}

	saleRaw := pc.Attr(saleAttr)
	if saleRaw == "" {
		return
	}
	if sale, ok := NumericValue(saleRaw); ok && sale > 0 && sale >= regular {
		pc.Add(saleAttr, RuleSalePriceHigherThanPrice, models.SeverityError, &saleRaw,
			fmt.Sprintf("%q (%s) must be lower than %q (%s)", saleAttr, saleRaw, regularAttr, regularRaw))
	}
}

// CheckTitleQuality runs the shared title heuristics: all-caps, promotional
// language, runaway punctuation.
func (pc *ProductContext) CheckTitleQuality() {
	title := pc.Attr("title")
	if title == "" {
		return
	}
	if IsAllCaps(title, 10) {
		pc.Add("title", RuleTitleAllCaps, models.SeverityWarning, &title,
			"Title is written entirely in capital letters")
	}
	if phrase, found := ContainsPromotionalLanguage(title); found {
		pc.Add("title", RuleTitlePromoLanguage, models.SeverityWarning, &title,
			fmt.Sprintf("Title contains promotional language (%q)", phrase))
	}
	if HasExcessivePunctuation(title) {
		pc.Add("title", RuleExcessivePunctuation, models.SeverityWarning, &title,
			"Title contains repeated punctuation")
	}
}

// CheckDescriptionQuality flags restricted HTML and runaway punctuation in
// the description. htmlSeverity differs per merchant (Facebook treats
// embedded script content as an error).
func (pc *ProductContext) CheckDescriptionQuality(htmlSeverity models.Severity) {
	desc := pc.Attr("description")
	if desc == "" {
		return
	}
	if HasRestrictedHTML(desc) {
		pc.Add("description", RuleRestrictedHTML, htmlSeverity, nil,
			"Description contains script, iframe, object or embed tags")
	}
	if HasExcessivePunctuation(desc) {
		pc.Add("description", RuleExcessivePunctuation, models.SeverityInfo, nil,
			"Description contains repeated punctuation")
	}
}

// CheckURLSecurity checks protocol hygiene on one URL-bearing attribute:
// non-http(s) protocols are errors, plain http earns a recommendation at the
// given severity.
func (pc *ProductContext) CheckURLSecurity(attr string, httpSeverity models.Severity) {
	value := pc.Attr(attr)
	if value == "" {
		return
	}
	switch {
	case strings.HasPrefix(value, "https://"):
		// fine
	case strings.HasPrefix(value, "http://"):
		pc.Add(attr, RuleURLNotHTTPS, httpSeverity, &value,
			fmt.Sprintf("%q should use HTTPS", attr))
	default:
		pc.Add(attr, RuleInvalidImageProtocol, models.SeverityError, &value,
			fmt.Sprintf("%q must use the http or https protocol", attr))
	}
}

// CheckImageQuality runs the shared image checks on one image attribute:
// placeholder filename detection, protocol hygiene at the given http
// severity, and an optional allowed extension whitelist.
func (pc *ProductContext) CheckImageQuality(attr string, httpSeverity models.Severity, allowedExtensions []string) {
	value := pc.Attr(attr)
	if value == "" {
		return
	}
	if LooksLikePlaceholderImage(value) {
		pc.Add(attr, RulePlaceholderImage, models.SeverityWarning, &value,
			fmt.Sprintf("%q looks like a placeholder image", attr))
	}
	pc.CheckURLSecurity(attr, httpSeverity)

	if len(allowedExtensions) > 0 {
		lower := strings.ToLower(value)
		if i := strings.IndexAny(lower, "?#"); i >= 0 {
			lower = lower[:i]
		}
		matched := false
		for _, ext := range allowedExtensions {
			if strings.HasSuffix(lower, ext) {
				matched = true
				break
			}
		}
		if !matched {
			pc.Add(attr, RuleImageExtension, models.SeverityWarning, &value,
				fmt.Sprintf("%q should be one of: %s", attr, strings.Join(allowedExtensions, ", ")))
		}
	}
}

// variantAttributes are the per-variant axes that require an item_group_id.
var variantAttributes = []string{"color", "size", "pattern", "material"}

// CheckVariantGrouping warns when variant axes are set without item_group_id.
// In strict mode the product must actually be a variation before warning.
func (pc *ProductContext) CheckVariantGrouping(strict bool) {
	if pc.Has("item_group_id") {
		return
	}
	if strict && !pc.IsVariation {
		return
	}
	for _, attr := range variantAttributes {
		if pc.Has(attr) {
			value := pc.Attr(attr)
			pc.Add("item_group_id", RuleVariantMissingGroupID, models.SeverityWarning, &value,
				fmt.Sprintf("%q is set but item_group_id is missing; variants cannot be grouped", attr))
			return
		}
	}
}

// IsApparel detects apparel products from category fields and the title.
func (pc *ProductContext) IsApparel() bool {
	for _, attr := range []string{"product_type", "google_product_category", "fb_product_category"} {
		if MatchesApparelKeyword(pc.Attr(attr)) {
			return true
		}
	}
	return MatchesApparelKeyword(pc.Attr("title"))
}

// CheckApparelAttributes recommends the apparel field set (gender, color,
// size, age_group) on apparel products. All findings are info severity.
func (pc *ProductContext) CheckApparelAttributes() {
	if !pc.IsApparel() {
		return
	}
	apparel := []struct {
		attr string
		rule string
	}{
		{"gender", RuleApparelMissingGender},
		{"color", RuleApparelMissingColor},
		{"size", RuleApparelMissingSize},
		{"age_group", RuleApparelMissingAgeGroup},
	}
	for _, a := range apparel {
		if !pc.Has(a.attr) {
			pc.Add(a.attr, a.rule, models.SeverityInfo, nil,
				fmt.Sprintf("Apparel products should provide %q", a.attr))
		}
	}
}
