package models

import "time"

type ProductType string

const (
	ProductTypeSimple    ProductType = "simple"
	ProductTypeVariable  ProductType = "variable"
	ProductTypeGrouped   ProductType = "grouped"
	ProductTypeVariation ProductType = "variation"
)

// Product is the minimal product record the validation engine reads: enough
// to resolve variation parents, skip price checks on variable/grouped types,
// and derive a display title. Attribute data itself travels separately as a
// per-call attribute map.
type Product struct {
	ID         int               `json:"id" gorm:"primary_key"`
	SKU        string            `json:"sku"`
	Title      string            `json:"title" gorm:"not null"`
	Type       ProductType       `json:"type" gorm:"default:simple"`
	ParentID   int               `json:"parent_id" gorm:"default:0"`
	Attributes map[string]string `json:"attributes" gorm:"-"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// IsVariation reports whether the product is a child variation.
func (p *Product) IsVariation() bool {
	return p.Type == ProductTypeVariation && p.ParentID > 0
}

// HasDirectPrice reports whether the product type carries its own price.
// Variable and grouped products price through their children.
func (p *Product) HasDirectPrice() bool {
	return p.Type != ProductTypeVariable && p.Type != ProductTypeGrouped
}
