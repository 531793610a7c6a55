package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

//go:embed queries/collection-products.sql
var collectionProductsQuery string

func (repo Repository) collectionProducts(ctx context.Context, collectionID string) ([]domain.CollectionProductItem, error) {
	return queryCollectionProducts(ctx, repo.DBConnection, collectionID)
}

type querier interface {
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
}

func queryCollectionProducts(ctx context.Context, conn querier, collectionID string) ([]domain.CollectionProductItem, error) {
	dtos, err := collectAll[CollectionProductDTO](conn.Query(ctx, collectionProductsQuery, pgx.NamedArgs{"collection_id": collectionID}))
	if err != nil {
		return nil, err
	}
	items := make([]domain.CollectionProductItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, collectionProductFromDTO(dto))
	}
	return items, nil
}

func (repo Repository) CollectionProducts(ctx context.Context, identifier string, viewerID string) ([]domain.CollectionProductItem, error) {
	dto, err := repo.visibleCollection(ctx, identifier, viewerID)
	if err != nil {
		return nil, err
	}
	return repo.collectionProducts(ctx, dto.ID)
}

//go:embed queries/product-exists.sql
var productExistsQuery string

//go:embed queries/insert-product.sql
var insertProductQuery string

//go:embed queries/upsert-collection-product.sql
var upsertCollectionProductQuery string

// AddCollectionProduct appends an existing product, or a new one described by
// input, to the end of a loadout. Adding a product already in the loadout
// only updates its note.
func (repo Repository) AddCollectionProduct(ctx context.Context, identifier string, userID string, input domain.CollectionProductInput) (items []domain.CollectionProductItem, err error) {
	loadout, err := repo.ownedLoadout(ctx, identifier, userID)
	if err != nil {
		return
	}
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" && strings.TrimSpace(input.Name) == "" {
		err = domain.ApiError{Code: domain.ApiErrorInvalidProduct, Message: "Select an existing product or provide a new product name."}
		return
	}

	err = repo.WithinTransaction(ctx, func(tx pgx.Tx) (err error) {
		if productID != "" {
			if _, parseErr := uuid.Parse(productID); parseErr != nil {
				return domain.ApiError{Code: domain.ApiErrorProductNotFound, Message: "Product not found."}
			}
			var exists bool
			err = tx.QueryRow(ctx, productExistsQuery, pgx.NamedArgs{"id": productID}).Scan(&exists)
			if err != nil {
				return
			}
			if !exists {
				return domain.ApiError{Code: domain.ApiErrorProductNotFound, Message: "Product not found."}
			}
		} else {
			productSlug, err := uniqueSlug(input.Name, "product")
			if err != nil {
				return err
			}
			err = tx.QueryRow(ctx, insertProductQuery, pgx.NamedArgs{
				"slug":        productSlug,
				"name":        strings.TrimSpace(input.Name),
				"brand":       nullIfEmpty(input.Brand),
				"description": nullIfEmpty(input.Description),
				"image_url":   nullIfEmpty(input.ImageURL),
				"product_url": nullIfEmpty(input.ProductURL),
				"source_url":  nullIfEmpty(input.SourceURL),
				"created_by":  userID,
			}).Scan(&productID)
			if err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		}

		_, err = tx.Exec(ctx, upsertCollectionProductQuery, pgx.NamedArgs{
			"collection_id": loadout.ID,
			"product_id":    productID,
			"note":          nullIfEmpty(input.Note),
		})
		if err != nil {
			return fmt.Errorf("failed to add product: %w", err)
		}
		items, err = queryCollectionProducts(ctx, tx, loadout.ID)
		return
	})
	return
}

//go:embed queries/reorder-collection-products.sql
var reorderCollectionProductsQuery string

// ReorderCollectionProducts assigns sort orders 1..n in the order given.
// items must name every product of the loadout exactly once.
func (repo Repository) ReorderCollectionProducts(ctx context.Context, identifier string, userID string, items []domain.ReorderItem) (reordered []domain.CollectionProductItem, err error) {
	loadout, err := repo.ownedLoadout(ctx, identifier, userID)
	if err != nil {
		return
	}
	productIDs := make([]string, 0, len(items))
	notes := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			continue
		}
		if seen[productID] {
			err = domain.ApiError{Code: domain.ApiErrorInvalidItems, Message: "Duplicate products are not allowed in reorder payload."}
			return
		}
		seen[productID] = true
		productIDs = append(productIDs, productID)
		notes = append(notes, strings.TrimSpace(item.Note))
	}
	if len(productIDs) == 0 {
		err = domain.ApiError{Code: domain.ApiErrorInvalidItems, Message: "Provide at least one product item to reorder."}
		return
	}

	err = repo.WithinTransaction(ctx, func(tx pgx.Tx) (err error) {
		current, err := queryCollectionProducts(ctx, tx, loadout.ID)
		if err != nil {
			return
		}
		if len(current) != len(productIDs) {
			return domain.ApiError{Code: domain.ApiErrorInvalidItems, Message: "Reorder payload must include every product currently in this loadout."}
		}
		for _, product := range current {
			if !seen[product.ProductID] {
				return domain.ApiError{Code: domain.ApiErrorInvalidItems, Message: "One or more products are not part of this loadout."}
			}
		}
		_, err = tx.Exec(ctx, reorderCollectionProductsQuery, pgx.NamedArgs{
			"collection_id": loadout.ID,
			"product_ids":   productIDs,
			"notes":         notes,
		})
		if err != nil {
			return fmt.Errorf("failed to reorder products: %w", err)
		}
		reordered, err = queryCollectionProducts(ctx, tx, loadout.ID)
		return
	})
	return
}

//go:embed queries/delete-collection-product.sql
var deleteCollectionProductQuery string

//go:embed queries/renumber-collection-products.sql
var renumberCollectionProductsQuery string

// RemoveCollectionProduct removes a product and closes the gap it leaves in
// the sort order.
func (repo Repository) RemoveCollectionProduct(ctx context.Context, identifier string, userID string, productID string) (remaining []domain.CollectionProductItem, err error) {
	loadout, err := repo.ownedLoadout(ctx, identifier, userID)
	if err != nil {
		return
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		err = domain.ApiError{Code: domain.ApiErrorProductRequired, Message: "productId is required."}
		return
	}
	if _, parseErr := uuid.Parse(productID); parseErr != nil {
		err = ErrNotFound
		return
	}
	err = repo.WithinTransaction(ctx, func(tx pgx.Tx) (err error) {
		res, err := tx.Exec(ctx, deleteCollectionProductQuery, pgx.NamedArgs{
			"collection_id": loadout.ID,
			"product_id":    productID,
		})
		if err != nil {
			return fmt.Errorf("failed to remove product: %w", err)
		}
		if res.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, renumberCollectionProductsQuery, pgx.NamedArgs{"collection_id": loadout.ID})
		if err != nil {
			return fmt.Errorf("failed to renumber products: %w", err)
		}
		remaining, err = queryCollectionProducts(ctx, tx, loadout.ID)
		return
	})
	return
}
