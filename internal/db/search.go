package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"golang.org/x/sync/errgroup"
)

//go:embed queries/search-loadouts.sql
var searchLoadoutsQuery string

//go:embed queries/search-categories.sql
var searchCategoriesQuery string

//go:embed queries/search-profiles.sql
var searchProfilesQuery string

// searchLimit keeps the per-type limit within [1, MaxSearchLimit]. Missing
// and non-positive limits mean DefaultSearchLimit.
func searchLimit(requested int) int {
	if requested < 1 {
		return domain.DefaultSearchLimit
	}
	return min(requested, domain.MaxSearchLimit)
}

// Search looks for the query across every requested entity type. Each type is
// searched independently and capped at LimitPerType results.
func (repo Repository) Search(ctx context.Context, params domain.SearchParams) (results domain.SearchResults, err error) {
	limit := searchLimit(params.LimitPerType)
	types := params.Types
	if len(types) == 0 {
		types = domain.NormalizeSearchTypes("")
	}
	pattern := likePattern(strings.ToLower(params.Query))

	results = domain.SearchResults{
		Query:      strings.TrimSpace(params.Query),
		Types:      types,
		Loadouts:   []domain.SearchLoadoutItem{},
		Categories: []domain.Category{},
		Products:   []domain.Product{},
		Profiles:   []domain.SearchProfileItem{},
	}

	g, gctx := errgroup.WithContext(ctx)
	if types.Contains(domain.SearchLoadouts) {
		g.Go(func() error {
			dtos, err := collectAll[CollectionDTO](repo.Query(gctx, searchLoadoutsQuery, pgx.NamedArgs{
				"category_slug": domain.NormalizeCategorySlug(params.CategorySlug),
				"pattern":       pattern,
				"limit":         limit,
			}))
			if err != nil {
				return fmt.Errorf("loadouts: %w", err)
			}
			for _, dto := range dtos {
				item := collectionListItemFromDTO(dto)
				results.Loadouts = append(results.Loadouts, domain.SearchLoadoutItem{
					ID:            item.ID,
					Slug:          item.Slug,
					Title:         item.Title,
					Description:   item.Description,
					CoverImageURL: item.CoverImageURL,
					Author:        item.Author,
				})
			}
			return nil
		})
	}
	if types.Contains(domain.SearchCategories) {
		g.Go(func() error {
			dtos, err := collectAll[CategoryDTO](repo.Query(gctx, searchCategoriesQuery, pgx.NamedArgs{
				"pattern": pattern,
				"limit":   limit,
			}))
			if err != nil {
				return fmt.Errorf("categories: %w", err)
			}
			results.Categories = categories(dtos)
			return nil
		})
	}
	if types.Contains(domain.SearchProducts) {
		g.Go(func() (err error) {
			results.Products, err = repo.SearchProducts(gctx, params.Query, limit)
			if err != nil {
				err = fmt.Errorf("products: %w", err)
			}
			return
		})
	}
	if types.Contains(domain.SearchProfiles) {
		g.Go(func() error {
			dtos, err := collectAll[ProfileDTO](repo.Query(gctx, searchProfilesQuery, pgx.NamedArgs{
				"pattern": pattern,
				"limit":   limit,
			}))
			if err != nil {
				return fmt.Errorf("profiles: %w", err)
			}
			for _, dto := range dtos {
				profile, ok := publicProfileFromDTO(dto)
				if !ok {
					continue
				}
				results.Profiles = append(results.Profiles, domain.SearchProfileItem{
					ID:          profile.ID,
					Handle:      profile.Handle,
					DisplayName: profile.DisplayName,
					AvatarURL:   profile.AvatarURL,
					Bio:         profile.Bio,
				})
			}
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		err = fmt.Errorf("search failed: %w", err)
	}
	return
}
