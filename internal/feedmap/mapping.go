// Package feedmap holds the fixed lookup tables the feed-file adapters use
// to translate generated feed tags into the normalized attribute names the
// validation core understands. The table must stay stable or previously
// generated feeds stop mapping onto the same rules.
package feedmap

import (
	"strings"

	"feedlint/internal/validation"
)

// tagAttributes maps feed tag names (already stripped of namespace prefixes
// such as "g:") to canonical attribute names. Yandex YML tags pass through
// verbatim: its validator addresses them by their native names.
var tagAttributes = map[string]string{
	"id":                      "id",
	"offer_id":                "id",
	"item_id":                 "id",
	"title":                   "title",
	"name":                    "name",
	"description":             "description",
	"link":                    "link",
	"url":                     "url",
	"image_link":              "image_link",
	"image":                   "image_link",
	"picture":                 "picture",
	"additional_image_link":   "additional_image_link",
	"price":                   "price",
	"sale_price":              "sale_price",
	"regular_price":           "regular_price",
	"oldprice":                "oldprice",
	"availability":            "availability",
	"available":               "available",
	"condition":               "condition",
	"brand":                   "brand",
	"vendor":                  "vendor",
	"model":                   "model",
	"gtin":                    "gtin",
	"ean":                     "gtin",
	"upc":                     "gtin",
	"isbn":                    "gtin",
	"barcode":                 "gtin",
	"mpn":                     "mpn",
	"google_product_category": "google_product_category",
	"fb_product_category":     "fb_product_category",
	"product_type":            "product_type",
	"category":                "category",
	"categoryid":              "categoryid",
	"item_group_id":           "item_group_id",
	"color":                   "color",
	"colour":                  "color",
	"size":                    "size",
	"pattern":                 "pattern",
	"material":                "material",
	"gender":                  "gender",
	"age_group":               "age_group",
	"identifier_exists":       "identifier_exists",
	"shipping_weight":         "shipping_weight",
	"sales_notes":             "sales_notes",
	"currencyid":              "currencyid",
	"delivery":                "delivery",
	"pickup":                  "pickup",
	"store":                   "store",
}

// namespacePrefixes are stripped before lookup.
var namespacePrefixes = []string{"g:", "yml:", "fb:"}

// AttributeName resolves one feed tag to its canonical attribute name.
// Unknown tags map to their lowercased form so merchant-specific extras
// (enable_checkout, seller_name, ...) pass through untouched.
func AttributeName(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	for _, prefix := range namespacePrefixes {
		t = strings.TrimPrefix(t, prefix)
	}
	t = strings.ReplaceAll(t, "-", "_")
	if canonical, ok := tagAttributes[t]; ok {
		return canonical
	}
	return t
}

// Normalize converts a raw tag-keyed map, as extracted from a generated feed
// file or a live product record, into the case-normalized AttributeMap the
// validation engine consumes.
func Normalize(raw map[string]interface{}) validation.AttributeMap {
	out := make(validation.AttributeMap, len(raw))
	for tag, value := range raw {
		out[AttributeName(tag)] = value
	}
	return out
}
