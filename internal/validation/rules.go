package validation

import (
	"regexp"

	"feedlint/internal/models"
)

// AttributeMap is the normalized per-product input: merchant attribute names
// mapped to raw values. Values are strings for scalar attributes or string
// slices for repeatable ones (additional images and the like). Values may
// still be CDATA-wrapped; checks strip the wrapper before comparing.
type AttributeMap map[string]interface{}

// RequiredRule marks one attribute as mandatory for a merchant.
type RequiredRule struct {
	Severity    models.Severity
	Description string
}

// LimitRule bounds an attribute's length in runes. A zero Min or Max means
// that bound is not enforced.
type LimitRule struct {
	Min      int
	Max      int
	Severity models.Severity
}

// EnumRule restricts an attribute to a fixed value set.
type EnumRule struct {
	Values        []string
	CaseSensitive bool
	Severity      models.Severity
}

// Format rule types. A rule has either a Pattern or a Type, not both.
const (
	FormatURL     = "url"
	FormatNumeric = "numeric"
)

// FormatRule checks an attribute's shape: a regex pattern, or one of the
// builtin url/numeric types.
type FormatRule struct {
	Pattern     *regexp.Regexp
	Type        string
	Severity    models.Severity
	Description string
}

// RuleSet is a merchant's complete static rule configuration. Immutable after
// construction; every validator instance for a merchant shares one RuleSet.
type RuleSet struct {
	Required map[string]RequiredRule
	Limits   map[string]LimitRule
	Enums    map[string]EnumRule
	Formats  map[string]FormatRule
}

// Rule identifiers shared across merchants. Merchant-specific rules define
// their own identifiers next to their checks.
const (
	RuleRequiredAttributeEmpty = "required_attribute_empty"
	RuleCharacterLimitMin      = "character_limit_min"
	RuleCharacterLimitMax      = "character_limit_max"
	RuleInvalidEnumValue       = "invalid_enum_value"
	RuleInvalidFormat          = "invalid_format"
	RuleInvalidURL             = "invalid_url"
	RuleInvalidNumeric         = "invalid_numeric"
	RulePriceMissingOrInvalid  = "price_missing_or_invalid"

	RuleMissingIdentifiers       = "missing_product_identifiers"
	RuleInvalidGTINLength        = "invalid_gtin_length"
	RuleInvalidGTINChecksum      = "invalid_gtin_checksum"
	RuleSalePriceHigherThanPrice = "sale_price_higher_than_price"
	RuleRegularPriceInvalid      = "regular_price_invalid"

	RuleTitleAllCaps           = "title_all_caps"
	RuleTitlePromoLanguage     = "title_promotional_language"
	RuleExcessivePunctuation   = "excessive_punctuation"
	RuleRestrictedHTML         = "restricted_html_content"
	RulePlaceholderImage       = "placeholder_image"
	RuleURLNotHTTPS            = "url_not_https"
	RuleInvalidImageProtocol   = "invalid_image_protocol"
	RuleImageExtension         = "unsupported_image_extension"
	RuleVariantMissingGroupID  = "variant_missing_item_group_id"
	RuleApparelMissingGender   = "apparel_missing_gender"
	RuleApparelMissingColor    = "apparel_missing_color"
	RuleApparelMissingSize     = "apparel_missing_size"
	RuleApparelMissingAgeGroup = "apparel_missing_age_group"

	RuleSuggestMissingGTIN        = "suggest_missing_gtin"
	RuleSuggestAdditionalImages   = "suggest_additional_images"
	RuleSuggestMissingCategory    = "suggest_missing_category"
	RuleSuggestShortDescription   = "suggest_short_description"
	RuleSuggestMissingBrand       = "suggest_missing_brand"
	RuleSuggestMissingProductType = "suggest_missing_product_type"
)
