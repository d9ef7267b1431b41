package feedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeName(t *testing.T) {
	cases := map[string]string{
		"g:id":           "id",
		"g:price":        "price",
		"g:image_link":   "image_link",
		"title":          "title",
		"ean":            "gtin",
		"upc":            "gtin",
		"isbn":           "gtin",
		"barcode":        "gtin",
		"colour":         "color",
		"offer_id":       "id",
		"age-group":      "age_group",
		"G:Brand":        "brand",
		"  g:mpn  ":      "mpn",
		"fb:description": "description",
		// Yandex YML tags keep their native names.
		"oldprice":   "oldprice",
		"currencyid": "currencyid",
		"picture":    "picture",
		"vendor":     "vendor",
		// Unknown tags pass through lowercased.
		"enable_checkout": "enable_checkout",
		"Seller_Name":     "seller_name",
		"custom-field":    "custom_field",
	}
	for tag, want := range cases {
		assert.Equal(t, want, AttributeName(tag), tag)
	}
}

func TestNormalize(t *testing.T) {
	raw := map[string]interface{}{
		"g:id":    "42",
		"g:price": "12.99 USD",
		"EAN":     "4006381333931",
		"title":   "Widget",
	}
	attrs := Normalize(raw)

	assert.Equal(t, "42", attrs["id"])
	assert.Equal(t, "12.99 USD", attrs["price"])
	assert.Equal(t, "4006381333931", attrs["gtin"])
	assert.Equal(t, "Widget", attrs["title"])
	assert.Len(t, attrs, 4)
}
