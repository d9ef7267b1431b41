package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"feedlint/internal/models"
)

// productRow mirrors the products table; attributes are stored as a JSON
// object of string values.
type productRow struct {
	ID         int    `gorm:"column:id;primaryKey"`
	SKU        string `gorm:"column:sku"`
	Title      string `gorm:"column:title"`
	Type       string `gorm:"column:type"`
	ParentID   int    `gorm:"column:parent_id"`
	Attributes string `gorm:"column:attributes"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (productRow) TableName() string { return "products" }

// ProductResolver is the gorm-backed product lookup the validation engine
// uses for variation/parent handling.
type ProductResolver struct {
	db *gorm.DB
}

func (d *Database) NewProductResolver() *ProductResolver {
	return &ProductResolver{db: d.DB}
}

// Resolve returns the product record, or (nil, nil) when it does not exist
// so the engine can degrade gracefully instead of failing the batch.
func (r *ProductResolver) Resolve(productID int) (*models.Product, error) {
	var row productRow
	err := r.db.First(&row, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve product %d: %w", productID, err)
	}

	product := &models.Product{
		ID:       row.ID,
		SKU:      row.SKU,
		Title:    row.Title,
		Type:     models.ProductType(row.Type),
		ParentID: row.ParentID,
	}
	if row.Attributes != "" {
		// Attribute decode failures degrade to an attribute-less product.
		_ = json.Unmarshal([]byte(row.Attributes), &product.Attributes)
	}
	return product, nil
}

// FeedResolver resolves stored feed metadata for the validator factory.
type FeedResolver struct {
	db *gorm.DB
}

func (d *Database) NewFeedResolver() *FeedResolver {
	return &FeedResolver{db: d.DB}
}

func (r *FeedResolver) Feed(feedID int) (*models.Feed, error) {
	var feed models.Feed
	err := r.db.First(&feed, "id = ?", feedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("feed %d not found", feedID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve feed %d: %w", feedID, err)
	}
	return &feed, nil
}

// Products returns up to limit products for a feed validation pass.
func (r *ProductResolver) Products(limit int) ([]models.Product, error) {
	var rows []productRow
	q := r.db.Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		p := models.Product{
			ID:       row.ID,
			SKU:      row.SKU,
			Title:    row.Title,
			Type:     models.ProductType(row.Type),
			ParentID: row.ParentID,
		}
		if row.Attributes != "" {
			_ = json.Unmarshal([]byte(row.Attributes), &p.Attributes)
		}
		out = append(out, p)
	}
	return out, nil
}
