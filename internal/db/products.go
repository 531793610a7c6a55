package db

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

const (
	DefaultProductSearchLimit = 40
	MaxProductSearchLimit     = 100
)

//go:embed queries/search-products.sql
var searchProductsQuery string

func likePattern(query string) string {
	query = domain.NormalizeSearchQuery(query)
	if query == "" {
		return ""
	}
	return "%" + query + "%"
}

// SearchProducts matches name, brand and description, newest first. An empty
// query lists the newest products.
func (repo Repository) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = DefaultProductSearchLimit
	}
	limit = min(limit, MaxProductSearchLimit)
	dtos, err := collectAll[ProductDTO](repo.Query(ctx, searchProductsQuery, pgx.NamedArgs{
		"pattern": likePattern(query),
		"limit":   limit,
	}))
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, productFromDTO(dto))
	}
	return products, nil
}
