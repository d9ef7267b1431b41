package validation

import (
	"fmt"
	"strings"

	"feedlint/internal/logger"
	"feedlint/internal/models"
)

// ProductResolver looks up the product records the engine needs for
// variation/parent handling. Implemented by the database layer; tests use an
// in-memory map.
type ProductResolver interface {
	Resolve(productID int) (*models.Product, error)
}

// MerchantRules is what a merchant implementation supplies on top of the
// shared engine: its static rule tables, its price-attribute list, and its
// chained custom validations.
type MerchantRules interface {
	Merchant() string
	Rules() *RuleSet
	PriceAttributes() []string
	RunCustomValidations(pc *ProductContext)
}

// Validator runs the fixed validation pipeline for one merchant and feed.
type Validator struct {
	merchant MerchantRules
	feedID   int
	resolver ProductResolver
	logger   *logger.Logger
}

// NewValidator wires a merchant rule set into the shared engine.
func NewValidator(m MerchantRules, feedID int, resolver ProductResolver, log *logger.Logger) *Validator {
	return &Validator{merchant: m, feedID: feedID, resolver: resolver, logger: log}
}

// Merchant returns the merchant identifier this validator checks against.
func (v *Validator) Merchant() string { return v.merchant.Merchant() }

// FeedID returns the feed this validator was built for.
func (v *Validator) FeedID() int { return v.feedID }

// attributes a variation may inherit from its parent instead of carrying
// itself.
var inheritedAttributes = map[string]bool{
	"picture":                 true,
	"image_link":              true,
	"available":               true,
	"availability":            true,
	"google_product_category": true,
	"fb_product_category":     true,
	"product_type":            true,
	"category":                true,
	"categoryid":              true,
}

// ValidateProduct runs every pipeline stage over one product's attribute map
// and returns the accumulated findings in pipeline order. Stages never
// short-circuit each other. displayTitle, when non-empty, overrides the title
// derived from the product record or the attribute map.
func (v *Validator) ValidateProduct(productID int, attrs AttributeMap, displayTitle string) []models.Finding {
	pc := v.newContext(productID, attrs, displayTitle)

	v.checkRequired(pc)
	v.checkCharacterLimits(pc)
	v.checkEnums(pc)
	v.checkFormats(pc)
	v.merchant.RunCustomValidations(pc)

	return pc.findings
}

func (v *Validator) newContext(productID int, attrs AttributeMap, displayTitle string) *ProductContext {
	pc := &ProductContext{
		ProductID: productID,
		Attrs:     attrs,
		merchant:  v.merchant,
	}

	var product *models.Product
	var err error
	if v.resolver != nil {
		product, err = v.resolver.Resolve(productID)
	}
	if err != nil || product == nil {
		// Unresolvable products still get generic findings.
		if v.logger != nil && err != nil {
			v.logger.Debug("product %d not resolvable: %v", productID, err)
		}
	} else {
		pc.product = product
		if product.IsVariation() {
			pc.IsVariation = true
			pc.ParentID = product.ParentID
			if parent, perr := v.resolver.Resolve(product.ParentID); perr == nil && parent != nil {
				pc.parentAttrs = parent.Attributes
			}
		}
	}

	pc.Title = v.resolveTitle(pc, displayTitle)
	return pc
}

func (v *Validator) resolveTitle(pc *ProductContext, displayTitle string) string {
	if displayTitle != "" {
		return displayTitle
	}
	if pc.product != nil && pc.product.Title != "" {
		if pc.IsVariation {
			return fmt.Sprintf("%s (variation #%d)", pc.product.Title, pc.ProductID)
		}
		return pc.product.Title
	}
	if t, ok := stringValue(pc.Attrs["title"]); ok {
		return StripCDATA(t)
	}
	return fmt.Sprintf("Product #%d", pc.ProductID)
}

// Stage 1: required attributes.
func (v *Validator) checkRequired(pc *ProductContext) {
	priceAttrs := toSet(v.merchant.PriceAttributes())
	for attr, rule := range v.merchant.Rules().Required {
		// Variable and grouped products carry no direct price.
		if priceAttrs[attr] && pc.product != nil && !pc.product.HasDirectPrice() {
			continue
		}

		value, present := pc.Attrs[attr]
		if present && !IsEmptyValue(value) {
			continue
		}

		// Variations may inherit a fixed attribute set from their parent.
		if pc.IsVariation && inheritedAttributes[strings.ToLower(attr)] {
			if inherited, ok := pc.parentAttrs[attr]; ok && strings.TrimSpace(inherited) != "" {
				continue
			}
		}

		desc := rule.Description
		if desc == "" {
			desc = attr
		}
		pc.Add(attr, RuleRequiredAttributeEmpty, rule.Severity, nil,
			fmt.Sprintf("Required attribute %q is missing or empty (%s)", attr, desc))
	}
}

// Stage 2: character limits.
func (v *Validator) checkCharacterLimits(pc *ProductContext) {
	for attr, rule := range v.merchant.Rules().Limits {
		raw, ok := stringValue(pc.Attrs[attr])
		if !ok || IsEmptyValue(raw) {
			continue
		}
		value := StripCDATA(raw)
		length := RuneLen(value)

		if rule.Min > 0 && length < rule.Min {
			pc.Add(attr, RuleCharacterLimitMin, rule.Severity, &value,
				fmt.Sprintf("%q is %d characters, below the minimum of %d", attr, length, rule.Min))
		}
		if rule.Max > 0 && length > rule.Max {
			pc.Add(attr, RuleCharacterLimitMax, rule.Severity, &value,
				fmt.Sprintf("%q is %d characters, above the maximum of %d", attr, length, rule.Max))
		}
	}
}

// Stage 3: enum membership.
func (v *Validator) checkEnums(pc *ProductContext) {
	for attr, rule := range v.merchant.Rules().Enums {
		raw, ok := stringValue(pc.Attrs[attr])
		if !ok || IsEmptyValue(raw) {
			continue
		}
		if HasUnresolvedCDATA(raw) {
			// Malformed wrapper; skip this check rather than compare marker text.
			continue
		}
		value := StripCDATA(raw)

		if attr == "availability" || attr == "available" {
			if normalized, ok := NormalizeAvailability(value, v.availabilityVocabulary()); ok {
				if containsValue(rule.Values, normalized, rule.CaseSensitive) {
					continue
				}
			}
		}

		if containsValue(rule.Values, value, rule.CaseSensitive) {
			continue
		}
		pc.Add(attr, RuleInvalidEnumValue, rule.Severity, &value,
			fmt.Sprintf("%q has value %q, expected one of: %s", attr, value, strings.Join(rule.Values, ", ")))
	}
}

func (v *Validator) availabilityVocabulary() string {
	switch v.merchant.Merchant() {
	case "facebook", "instagram":
		return "facebook"
	default:
		return "google"
	}
}

// Stage 4: format rules. Price attributes get the numeric >0 check and skip
// pattern/url validation entirely.
func (v *Validator) checkFormats(pc *ProductContext) {
	priceAttrs := toSet(v.merchant.PriceAttributes())
	for attr, rule := range v.merchant.Rules().Formats {
		raw, ok := stringValue(pc.Attrs[attr])
		if !ok || IsEmptyValue(raw) {
			continue
		}
		value := StripCDATA(raw)

		if priceAttrs[attr] {
			if amount, ok := NumericValue(value); !ok || amount <= 0 {
				pc.Add(attr, RulePriceMissingOrInvalid, models.SeverityWarning, &value,
					fmt.Sprintf("%q must be a positive price, got %q", attr, value))
			}
			continue
		}

		switch {
		case rule.Pattern != nil:
			if !rule.Pattern.MatchString(value) {
				pc.Add(attr, RuleInvalidFormat, rule.Severity, &value,
					fmt.Sprintf("%q has value %q which does not match the expected format (%s)", attr, value, rule.Description))
			}
		case rule.Type == FormatURL:
			if HasUnresolvedCDATA(raw) {
				continue
			}
			if !IsValidURL(value) {
				pc.Add(attr, RuleInvalidURL, rule.Severity, &value,
					fmt.Sprintf("%q is not a valid URL: %q", attr, value))
			}
		case rule.Type == FormatNumeric:
			if _, ok := NumericValue(value); !ok {
				pc.Add(attr, RuleInvalidNumeric, rule.Severity, &value,
					fmt.Sprintf("%q must be numeric, got %q", attr, value))
			}
		}
	}
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func containsValue(values []string, v string, caseSensitive bool) bool {
	for _, allowed := range values {
		if caseSensitive {
			if allowed == v {
				return true
			}
		} else if strings.EqualFold(allowed, v) {
			return true
		}
	}
	return false
}

// DefaultPriceAttributes is the base price-attribute list merchants override
// when they name prices differently.
func DefaultPriceAttributes() []string {
	return []string{"price", "sale_price", "regular_price"}
}
