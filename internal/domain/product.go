package domain

import (
	"time"
)

// Product represents a product in the catalog.
type Product struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category"`
	CategoryName string    `json:"category_name,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Image        *string   `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
