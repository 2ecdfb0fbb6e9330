package domain

import (
	"strconv"
	"time"
)

// Product represents a sellable item in the catalog.
//
// Price holds the decimal exactly as the store records it ("9.99"); the
// service projection converts it to a number at the boundary. UpdatedAt is
// refreshed by the repository on every mutation.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Stock       int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewProduct creates a Product with both timestamps set. The ID is assigned
// by the store on insert.
func NewProduct(name, description, price string, stock int, isActive bool) *Product {
	now := time.Now().UTC()
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// PriceValue parses the stored decimal into a float64.
func (p *Product) PriceValue() (float64, error) {
	v, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, ErrNegativePrice
	}
	return v, nil
}

// Validate checks if the Product has valid data.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	v, err := p.PriceValue()
	if err != nil || v < 0 {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
