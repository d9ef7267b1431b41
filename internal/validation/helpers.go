package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var cdataPattern = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*)\]\]>\s*$`)

// StripCDATA unwraps a <![CDATA[...]]> wrapper and trims the inner text.
// Input that is not a CDATA section is returned trimmed as-is.
func StripCDATA(s string) string {
	if m := cdataPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// HasUnresolvedCDATA reports whether CDATA markers remain after stripping,
// which means the wrapper was unbalanced or nested. Checks that compare the
// literal value skip such attributes rather than fail on marker text.
func HasUnresolvedCDATA(s string) bool {
	stripped := StripCDATA(s)
	return strings.Contains(stripped, "<![CDATA[") || strings.Contains(stripped, "]]>")
}

var nonDigits = regexp.MustCompile(`\D`)

// gtinLengths are the only standard GTIN digit counts (EAN-8, UPC-A, EAN-13,
// ITF-14).
var gtinLengths = map[int]bool{8: true, 12: true, 13: true, 14: true}

// ValidGTINLength strips non-digits and reports whether the remaining digit
// count is a standard GTIN length.
func ValidGTINLength(gtin string) bool {
	return gtinLengths[len(nonDigits.ReplaceAllString(gtin, ""))]
}

// ValidGTINChecksum verifies a GTIN's mod-10 check digit. The digits are
// left-padded to 14; positions 1-13 are weighted 3,1,3,... and the check
// digit must equal (10 - sum mod 10) mod 10.
func ValidGTINChecksum(gtin string) bool {
	digits := nonDigits.ReplaceAllString(gtin, "")
	if !gtinLengths[len(digits)] {
		return false
	}
	digits = strings.Repeat("0", 14-len(digits)) + digits

	sum := 0
	for i := 0; i < 13; i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	check := (10 - sum%10) % 10
	return check == int(digits[13]-'0')
}

var (
	truthyValues = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "on": true}
	falsyValues  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "off": true}
)

// NormalizeBoolean maps common boolean spellings to a value. The second
// return is false when the input matches neither set.
func NormalizeBoolean(s string) (value bool, ok bool) {
	v := strings.ToLower(strings.TrimSpace(StripCDATA(s)))
	if truthyValues[v] {
		return true, true
	}
	if falsyValues[v] {
		return false, true
	}
	return false, false
}

// availabilityAliases maps spelling and separator variants onto canonical
// availability states.
var availabilityAliases = map[string]string{
	"in stock": "in_stock", "in-stock": "in_stock", "instock": "in_stock", "in_stock": "in_stock",
	"out of stock": "out_of_stock", "out-of-stock": "out_of_stock", "outofstock": "out_of_stock",
	"out_of_stock": "out_of_stock", "oos": "out_of_stock", "sold out": "out_of_stock",
	"preorder": "preorder", "pre order": "preorder", "pre-order": "preorder", "pre_order": "preorder",
	"backorder": "backorder", "back order": "backorder", "back-order": "backorder",
	"back_order": "backorder", "on backorder": "backorder", "on_backorder": "backorder",
	"discontinued": "discontinued",
	"available for order": "available_for_order", "available-for-order": "available_for_order",
	"available_for_order": "available_for_order",
}

// availabilityVocab renders canonical states in a merchant vocabulary.
// Google uses underscore separators, Facebook uses spaces.
var availabilityVocab = map[string]map[string]string{
	"google": {
		"in_stock":            "in_stock",
		"out_of_stock":        "out_of_stock",
		"preorder":            "preorder",
		"backorder":           "backorder",
		"discontinued":        "out_of_stock",
		"available_for_order": "in_stock",
	},
	"facebook": {
		"in_stock":            "in stock",
		"out_of_stock":        "out of stock",
		"preorder":            "available for order",
		"backorder":           "available for order",
		"discontinued":        "discontinued",
		"available_for_order": "available for order",
	},
}

// NormalizeAvailability maps an availability spelling variant to a canonical
// value in the named vocabulary ("google" or "facebook"). The second return
// is false when the input matches no known variant.
func NormalizeAvailability(value, vocab string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(StripCDATA(value)))
	canonical, ok := availabilityAliases[v]
	if !ok {
		return "", false
	}
	words, ok := availabilityVocab[vocab]
	if !ok {
		return "", false
	}
	out, ok := words[canonical]
	return out, ok
}

var numericToken = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// NumericValue extracts the first numeric token from a string such as
// "12.99 USD" or "12,99". The second return is false when no token exists.
func NumericValue(s string) (float64, bool) {
	tok := numericToken.FindString(StripCDATA(s))
	if tok == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(tok, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsValidURL checks standard URL syntax with an http or https scheme.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RuneLen is the multi-byte aware length used by character-limit checks.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// IsEmptyValue implements the shared emptiness definition: nil, whitespace-only
// string, empty slice, or a slice whose every element is itself empty.
func IsEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		for _, e := range t {
			if strings.TrimSpace(e) != "" {
				return false
			}
		}
		return true
	case []interface{}:
		for _, e := range t {
			if !IsEmptyValue(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// stringValue coerces a scalar attribute value to a string. Slice values
// return their first non-empty element so single-image arrays behave like
// scalars; deeper structures are skipped by string-based checks.
func stringValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		for _, e := range t {
			if strings.TrimSpace(e) != "" {
				return e, true
			}
		}
		return "", false
	case []interface{}:
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

var (
	excessiveBangs   = regexp.MustCompile(`[!?]{2,}`)
	excessiveDots    = regexp.MustCompile(`\.{3,}`)
	restrictedHTML   = regexp.MustCompile(`(?i)<\s*(script|iframe|object|embed)\b`)
	placeholderNames = regexp.MustCompile(`(?i)(placeholder|no[-_]?image|missing[-_]?image|image[-_]?not[-_]?found|dummy|woocommerce-placeholder)`)
)

// promotionalPhrases flag marketing language merchants reject in titles.
var promotionalPhrases = []string{
	"free shipping", "best price", "lowest price", "limited time", "limited offer",
	"click here", "buy now", "on sale", "best seller", "% off", "special offer",
	"cheapest", "great deal", "hot item",
}

// IsAllCaps reports whether a string of at least minLen runes is entirely its
// own uppercase form. Strings with no letters never match.
func IsAllCaps(s string, minLen int) bool {
	s = strings.TrimSpace(s)
	if RuneLen(s) < minLen {
		return false
	}
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// ContainsPromotionalLanguage does a case-insensitive scan against the fixed
// phrase list.
func ContainsPromotionalLanguage(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, phrase := range promotionalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// HasExcessivePunctuation flags 2+ consecutive !/? or 3+ consecutive dots.
func HasExcessivePunctuation(s string) bool {
	return excessiveBangs.MatchString(s) || excessiveDots.MatchString(s)
}

// HasRestrictedHTML detects script/iframe/object/embed tags.
func HasRestrictedHTML(s string) bool {
	return restrictedHTML.MatchString(s)
}

// LooksLikePlaceholderImage matches common placeholder filename patterns.
func LooksLikePlaceholderImage(imageURL string) bool {
	return placeholderNames.MatchString(imageURL)
}

// apparelKeywords gate apparel-specific recommendations. Matched against
// category fields and the title.
var apparelKeywords = []string{
	"apparel", "clothing", "clothes", "shirt", "t-shirt", "tshirt", "dress",
	"pants", "trousers", "jeans", "jacket", "coat", "sweater", "hoodie",
	"skirt", "shorts", "shoes", "sneakers", "boots", "sandals", "socks",
	"underwear", "lingerie", "swimwear", "activewear", "outerwear",
}

// MatchesApparelKeyword scans a string against the apparel keyword list.
func MatchesApparelKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range apparelKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var iso3166Alpha2 = regexp.MustCompile(`^[A-Z]{2}$`)

// IsISORegionCode checks for an ISO-3166 alpha-2 region code.
func IsISORegionCode(s string) bool {
	return iso3166Alpha2.MatchString(strings.TrimSpace(s))
}

// CountEmoji counts runes in the emoji and pictograph planes.
func CountEmoji(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) || r == 0x2764 {
			n++
		}
	}
	return n
}
