package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/technopolitica/loadouts/internal/domain"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidCategory = errors.New("category is not one of the fixed categories")

const (
	maxSlugBaseLength            = 60
	slugSuffixAlphabet           = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugSuffixLength             = 6
	defaultPublicCollectionLimit = 24
	maxPublicCollections         = 100
	maxOwnerLoadouts             = 60
	maxCategoryLoadouts          = 60
	maxCollectionComments        = 20
)

// uniqueSlug turns title into a URL slug with a random suffix so that equal
// titles never collide.
func uniqueSlug(title string, fallback string) (string, error) {
	base := slug.Make(title)
	if len(base) > maxSlugBaseLength {
		base = strings.Trim(base[:maxSlugBaseLength], "-")
	}
	if base == "" {
		base = fallback
	}
	suffix, err := gonanoid.Generate(slugSuffixAlphabet, slugSuffixLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate slug suffix: %w", err)
	}
	return base + "-" + suffix, nil
}

// identifierArgs resolves a collection or category identifier that is either
// a uuid or a slug.
func identifierArgs(identifier string) pgx.NamedArgs {
	identifier = strings.TrimSpace(identifier)
	if id, err := uuid.Parse(identifier); err == nil {
		return pgx.NamedArgs{"id": id.String(), "slug": nil}
	}
	return pgx.NamedArgs{"id": nil, "slug": strings.ToLower(identifier)}
}

//go:embed queries/collection-by-identifier.sql
var collectionByIdentifierQuery string

func (repo Repository) collectionByIdentifier(ctx context.Context, identifier string) (CollectionDTO, error) {
	return collectOne[CollectionDTO](repo.Query(ctx, collectionByIdentifierQuery, identifierArgs(identifier)))
}

// visibleCollection resolves a collection the viewer may see. Private
// collections are only visible to their owner and look missing to everyone
// else.
func (repo Repository) visibleCollection(ctx context.Context, identifier string, viewerID string) (dto CollectionDTO, err error) {
	dto, err = repo.collectionByIdentifier(ctx, identifier)
	if err != nil {
		return
	}
	if !dto.IsPublic && dto.OwnerID != viewerID {
		err = ErrNotFound
	}
	return
}

// ownedLoadout resolves a loadout the user may modify.
func (repo Repository) ownedLoadout(ctx context.Context, identifier string, userID string) (dto CollectionDTO, err error) {
	dto, err = repo.visibleCollection(ctx, identifier, userID)
	if err != nil {
		return
	}
	if dto.Kind != string(domain.CollectionKindLoadout) {
		err = ErrNotFound
		return
	}
	if dto.OwnerID != userID {
		err = ErrForbidden
	}
	return
}

func (repo Repository) CollectionByIdentifier(ctx context.Context, identifier string, viewerID string) (collection domain.Collection, err error) {
	dto, err := repo.visibleCollection(ctx, identifier, viewerID)
	if err != nil {
		return
	}
	collection = collectionFromDTO(dto)
	return
}

//go:embed queries/active-category.sql
var activeCategoryQuery string

func (repo Repository) activeCategory(ctx context.Context, identifier string) (CategoryDTO, error) {
	return collectOne[CategoryDTO](repo.Query(ctx, activeCategoryQuery, identifierArgs(identifier)))
}

// fixedCategoryID resolves the category a loadout is filed under. Only the
// fixed cat-001..cat-100 categories accept loadouts.
func (repo Repository) fixedCategoryID(ctx context.Context, categorySlug string) (string, error) {
	if !domain.IsFixedCategorySlug(categorySlug) {
		return "", ErrInvalidCategory
	}
	category, err := repo.activeCategory(ctx, domain.NormalizeCategorySlug(categorySlug))
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCategory
	}
	return category.ID, err
}

//go:embed queries/insert-loadout.sql
var insertLoadoutQuery string

func (repo Repository) CreateLoadout(ctx context.Context, input domain.LoadoutInput) (loadout domain.CollectionListItem, err error) {
	categoryID, err := repo.fixedCategoryID(ctx, input.CategorySlug)
	if err != nil {
		return
	}
	loadoutSlug, err := uniqueSlug(input.Title, "loadout")
	if err != nil {
		return
	}
	var id string
	err = repo.QueryRow(ctx, insertLoadoutQuery, pgx.NamedArgs{
		"slug":            loadoutSlug,
		"owner_id":        input.OwnerID,
		"category_id":     categoryID,
		"title":           input.Title,
		"description":     nullIfEmpty(input.Description),
		"cover_image_url": nullIfEmpty(input.CoverImage),
		"is_public":       input.IsPublic,
	}).Scan(&id)
	if isUniqueViolation(err) {
		err = ErrConflict
	}
	if err != nil {
		return
	}

	dto, err := repo.collectionByIdentifier(ctx, id)
	if err != nil {
		return
	}
	loadout = collectionListItemFromDTO(dto)
	repo.trackMilestoneQuietly(ctx, input.OwnerID, domain.MilestoneFirstLoadoutCreated, domain.Record{}.
		With("loadoutId", loadout.ID).
		With("categorySlug", domain.NormalizeCategorySlug(input.CategorySlug)))
	return
}

//go:embed queries/update-loadout.sql
var updateLoadoutQuery string

func (repo Repository) UpdateLoadout(ctx context.Context, identifier string, input domain.LoadoutInput) (loadout domain.CollectionListItem, err error) {
	dto, err := repo.ownedLoadout(ctx, identifier, input.OwnerID)
	if err != nil {
		return
	}
	categoryID, err := repo.fixedCategoryID(ctx, input.CategorySlug)
	if err != nil {
		return
	}
	_, err = repo.Exec(ctx, updateLoadoutQuery, pgx.NamedArgs{
		"id":              dto.ID,
		"title":           input.Title,
		"description":     nullIfEmpty(input.Description),
		"category_id":     categoryID,
		"cover_image_url": nullIfEmpty(input.CoverImage),
		"is_public":       input.IsPublic,
	})
	if err != nil {
		err = fmt.Errorf("failed to update loadout: %w", err)
		return
	}
	dto, err = repo.collectionByIdentifier(ctx, dto.ID)
	if err != nil {
		return
	}
	loadout = collectionListItemFromDTO(dto)
	return
}

//go:embed queries/delete-collection.sql
var deleteCollectionQuery string

func (repo Repository) DeleteLoadout(ctx context.Context, identifier string, userID string) error {
	dto, err := repo.ownedLoadout(ctx, identifier, userID)
	if err != nil {
		return err
	}
	_, err = repo.Exec(ctx, deleteCollectionQuery, pgx.NamedArgs{"id": dto.ID})
	if err != nil {
		return fmt.Errorf("failed to delete loadout: %w", err)
	}
	return nil
}

//go:embed queries/public-collections.sql
var publicCollectionsQuery string

// PublicCollections lists public collections newest first. An empty kind
// lists every kind.
func (repo Repository) PublicCollections(ctx context.Context, kind domain.CollectionKind, limit int) ([]domain.CollectionListItem, error) {
	if limit < 1 {
		limit = defaultPublicCollectionLimit
	}
	if limit > maxPublicCollections {
		limit = maxPublicCollections
	}
	dtos, err := collectAll[CollectionDTO](repo.Query(ctx, publicCollectionsQuery, pgx.NamedArgs{"kind": string(kind), "limit": limit}))
	if err != nil {
		return nil, err
	}
	return listItems(dtos), nil
}

//go:embed queries/loadouts-by-owner.sql
var loadoutsByOwnerQuery string

func (repo Repository) LoadoutsByOwner(ctx context.Context, ownerID string, includePrivate bool) ([]domain.CollectionListItem, error) {
	dtos, err := collectAll[CollectionDTO](repo.Query(ctx, loadoutsByOwnerQuery, pgx.NamedArgs{
		"owner_id":        ownerID,
		"include_private": includePrivate,
		"limit":           maxOwnerLoadouts,
	}))
	if err != nil {
		return nil, err
	}
	return listItems(dtos), nil
}

//go:embed queries/latest-comments.sql
var latestCommentsQuery string

//go:embed queries/like-summary.sql
var likeSummaryQuery string

// CollectionDetail assembles a collection with its products, latest comments
// and like count.
func (repo Repository) CollectionDetail(ctx context.Context, identifier string, viewerID string) (detail domain.CollectionDetail, err error) {
	dto, err := repo.visibleCollection(ctx, identifier, viewerID)
	if err != nil {
		return
	}
	detail.CollectionListItem = collectionListItemFromDTO(dto)
	detail.OwnerID = dto.OwnerID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.Products, err = repo.collectionProducts(gctx, dto.ID)
		return
	})
	g.Go(func() error {
		comments, err := collectAll[CommentDTO](repo.Query(gctx, latestCommentsQuery, pgx.NamedArgs{
			"collection_id": dto.ID,
			"limit":         maxCollectionComments,
		}))
		if err != nil {
			return err
		}
		detail.Comments = make([]domain.CommentItem, 0, len(comments))
		for _, comment := range comments {
			detail.Comments = append(detail.Comments, commentFromDTO(comment))
		}
		return nil
	})
	g.Go(func() error {
		return repo.QueryRow(gctx, likeSummaryQuery, pgx.NamedArgs{
			"collection_id": dto.ID,
			"user_id":       nullIfEmpty(viewerID),
		}).Scan(&detail.LikeCount, &detail.ViewerHasLiked)
	})
	err = g.Wait()
	return
}

func listItems(dtos []CollectionDTO) []domain.CollectionListItem {
	items := make([]domain.CollectionListItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, collectionListItemFromDTO(dto))
	}
	return items
}
