package models

import "time"

// Feed is one configured feed destination: a merchant plus the products it
// covers. The validator factory resolves a feed's merchant through this
// record.
type Feed struct {
	ID        int       `json:"id" gorm:"primary_key"`
	Name      string    `json:"name" gorm:"not null"`
	Merchant  string    `json:"merchant" gorm:"not null"`
	Status    string    `json:"status" gorm:"default:ACTIVE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationRun records one pass over a feed's products.
type ValidationRun struct {
	ID              string    `json:"id"`
	FeedID          int       `json:"feed_id"`
	ProductsChecked int       `json:"products_checked"`
	IssuesFound     int       `json:"issues_found"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
