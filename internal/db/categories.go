package db

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

//go:embed queries/active-categories.sql
var activeCategoriesQuery string

func (repo Repository) ActiveCategories(ctx context.Context) ([]domain.Category, error) {
	dtos, err := collectAll[CategoryDTO](repo.Query(ctx, activeCategoriesQuery))
	if err != nil {
		return nil, err
	}
	return categories(dtos), nil
}

//go:embed queries/loadouts-by-category.sql
var loadoutsByCategoryQuery string

// CategoryWithLoadouts resolves a category by id or slug together with its
// newest public loadouts.
func (repo Repository) CategoryWithLoadouts(ctx context.Context, identifier string) (result domain.CategoryWithLoadouts, err error) {
	category, err := repo.activeCategory(ctx, identifier)
	if err != nil {
		return
	}
	dtos, err := collectAll[CollectionDTO](repo.Query(ctx, loadoutsByCategoryQuery, pgx.NamedArgs{
		"category_id": category.ID,
		"limit":       maxCategoryLoadouts,
	}))
	if err != nil {
		return
	}
	result = domain.CategoryWithLoadouts{
		Category: categoryFromDTO(category),
		Loadouts: listItems(dtos),
	}
	return
}

func categories(dtos []CategoryDTO) []domain.Category {
	items := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, categoryFromDTO(dto))
	}
	return items
}
