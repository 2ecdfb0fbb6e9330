package postgres

import (
	"log/slog"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store"
)

// productTable maps domain.Product onto the products table. Price is scanned
// as its decimal text so no precision is lost between the NUMERIC column and
// the DTO projection. updated_at is refreshed on every mutation.
var productTable = Table[domain.Product]{
	Name: "products",
	Columns: []string{
		"id", "name", "description", "price", "stock",
		"is_active", "created_at", "updated_at",
	},
	Fields: func(p *domain.Product) []any {
		return []any{
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		}
	},
	Values: func(p *domain.Product) []any {
		return []any{
			p.Name, p.Description, p.Price, p.Stock,
			p.IsActive, p.CreatedAt, p.UpdatedAt,
		}
	},
	SetID:      func(p *domain.Product, id int64) { p.ID = id },
	SoftDelete: true,
	Touch:      "updated_at",
}

// NewProductStore creates the PostgreSQL repository for products.
func NewProductStore(db store.DBTX, log *slog.Logger) store.Repository[domain.Product] {
	return New(db, productTable, log)
}
