package service

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// CreateProductInput is the payload for creating a product.
type CreateProductInput struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Stock       *int    `json:"stock"       validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"isActive"    validate:"omitempty"`
}

// UpdateProductInput is the partial payload for updating a product. Nil
// fields are left untouched.
type UpdateProductInput struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock"       validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"isActive"    validate:"omitempty"`
}

// ProductDTO is the externally visible projection of a product. Price is a
// number even though the store records it as decimal text.
type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductService is the CRUD engine instantiated for products. Products
// carry no uniqueness constraint.
type ProductService struct {
	*Crud[domain.Product, CreateProductInput, UpdateProductInput, ProductDTO]
}

// NewProductService creates the product resource service.
func NewProductService(repo store.Repository[domain.Product], log *slog.Logger) *ProductService {
	return &ProductService{Crud: NewCrud(repo, productDescriptor, log)}
}

// formatPrice renders a price for decimal storage with two fraction digits.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var productDescriptor = Descriptor[domain.Product, CreateProductInput, UpdateProductInput, ProductDTO]{
	Name:     "product",
	NotFound: store.ErrProductNotFound,
	ID:       func(p *domain.Product) int64 { return p.ID },
	New: func(in CreateProductInput) *domain.Product {
		stock := 0
		if in.Stock != nil {
			stock = *in.Stock
		}
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		return domain.NewProduct(in.Name, in.Description, formatPrice(in.Price), stock, active)
	},
	Changes: func(in UpdateProductInput) store.Changes {
		changes := store.Changes{}
		if in.Name != nil {
			changes["name"] = *in.Name
		}
		if in.Description != nil {
			changes["description"] = *in.Description
		}
		if in.Price != nil {
			changes["price"] = formatPrice(*in.Price)
		}
		if in.Stock != nil {
			changes["stock"] = *in.Stock
		}
		if in.IsActive != nil {
			changes["is_active"] = *in.IsActive
		}
		return changes
	},
	Project: func(p *domain.Product) ProductDTO {
		// The column is NUMERIC, so the text always parses; a zero value
		// would only surface on a corrupted row.
		price, _ := p.PriceValue()
		return ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			Stock:       p.Stock,
			IsActive:    p.IsActive,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
	},
	Columns: map[string]string{
		"id":          "id",
		"name":        "name",
		"description": "description",
		"price":       "price",
		"stock":       "stock",
		"isActive":    "is_active",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
}
