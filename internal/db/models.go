package db

import (
	"time"

	"github.com/technopolitica/loadouts/internal/domain"
)

type ProfileDTO struct {
	ID          string   `db:"id"`
	Handle      *string  `db:"handle"`
	DisplayName *string  `db:"display_name"`
	AvatarURL   *string  `db:"avatar_url"`
	Bio         *string  `db:"bio"`
	Interests   []string `db:"interests"`
}

func profileFromDTO(dto ProfileDTO) domain.Profile {
	return domain.Profile{
		ID:          dto.ID,
		Handle:      dto.Handle,
		DisplayName: dto.DisplayName,
		AvatarURL:   dto.AvatarURL,
		Bio:         dto.Bio,
		Interests:   domain.NewSet(dto.Interests...),
	}
}

func publicProfileFromDTO(dto ProfileDTO) (profile domain.PublicProfile, ok bool) {
	if dto.Handle == nil || *dto.Handle == "" || dto.DisplayName == nil || *dto.DisplayName == "" {
		return
	}
	return domain.PublicProfile{
		ID:          dto.ID,
		Handle:      *dto.Handle,
		DisplayName: *dto.DisplayName,
		AvatarURL:   dto.AvatarURL,
		Bio:         deref(dto.Bio),
		Interests:   domain.NewSet(dto.Interests...),
	}, true
}

type FollowEdgeDTO struct {
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type FeedLoadoutDTO struct {
	ID            string    `db:"id"`
	Slug          string    `db:"slug"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	CoverImageURL *string   `db:"cover_image_url"`
	OwnerID       string    `db:"owner_id"`
	CreatedAt     time.Time `db:"created_at"`
}

type NotificationDTO struct {
	ID         string        `db:"id"`
	ActorID    string        `db:"actor_id"`
	Type       string        `db:"type"`
	EntityType string        `db:"entity_type"`
	EntityID   *string       `db:"entity_id"`
	Metadata   domain.Record `db:"metadata"`
	IsRead     bool          `db:"is_read"`
	CreatedAt  time.Time     `db:"created_at"`
}

type CollectionDTO struct {
	ID            string    `db:"id"`
	Slug          string    `db:"slug"`
	Kind          string    `db:"kind"`
	OwnerID       string    `db:"owner_id"`
	CategoryID    *string   `db:"category_id"`
	CategorySlug  *string   `db:"category_slug"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	CoverImageURL *string   `db:"cover_image_url"`
	IsPublic      bool      `db:"is_public"`
	CreatedAt     time.Time `db:"created_at"`
	OwnerHandle   *string   `db:"owner_handle"`
	OwnerName     *string   `db:"owner_display_name"`
}

func collectionFromDTO(dto CollectionDTO) domain.Collection {
	return domain.Collection{
		ID:         dto.ID,
		Slug:       dto.Slug,
		Kind:       domain.CollectionKind(dto.Kind),
		OwnerID:    dto.OwnerID,
		IsPublic:   dto.IsPublic,
		CategoryID: dto.CategoryID,
	}
}

func collectionListItemFromDTO(dto CollectionDTO) domain.CollectionListItem {
	return domain.CollectionListItem{
		ID:            dto.ID,
		Slug:          dto.Slug,
		Kind:          domain.CollectionKind(dto.Kind),
		Title:         dto.Title,
		Description:   deref(dto.Description),
		Author:        domain.AuthorLabel(dto.OwnerHandle, dto.OwnerName),
		CategorySlug:  dto.CategorySlug,
		CoverImageURL: dto.CoverImageURL,
		IsPublic:      dto.IsPublic,
		CreatedAt:     dto.CreatedAt,
	}
}

type CollectionProductDTO struct {
	ProductID   string  `db:"product_id"`
	Slug        *string `db:"slug"`
	Name        string  `db:"name"`
	Brand       *string `db:"brand"`
	Description *string `db:"description"`
	ImageURL    *string `db:"image_url"`
	ProductURL  *string `db:"product_url"`
	SourceURL   *string `db:"source_url"`
	Note        *string `db:"note"`
	SortOrder   int32   `db:"sort_order"`
}

func collectionProductFromDTO(dto CollectionProductDTO) domain.CollectionProductItem {
	return domain.CollectionProductItem{
		ProductID:   dto.ProductID,
		Slug:        dto.Slug,
		Name:        dto.Name,
		Brand:       dto.Brand,
		Description: deref(dto.Description),
		ImageURL:    dto.ImageURL,
		ProductURL:  dto.ProductURL,
		SourceURL:   dto.SourceURL,
		Note:        dto.Note,
		SortOrder:   int(dto.SortOrder),
	}
}

type ProductDTO struct {
	ID          string  `db:"id"`
	Slug        *string `db:"slug"`
	Name        string  `db:"name"`
	Brand       *string `db:"brand"`
	Description *string `db:"description"`
	ImageURL    *string `db:"image_url"`
	ProductURL  *string `db:"product_url"`
}

func productFromDTO(dto ProductDTO) domain.Product {
	return domain.Product{
		ID:          dto.ID,
		Slug:        dto.Slug,
		Name:        dto.Name,
		Brand:       dto.Brand,
		Description: deref(dto.Description),
		ImageURL:    dto.ImageURL,
		ProductURL:  dto.ProductURL,
	}
}

type CommentDTO struct {
	ID                string    `db:"id"`
	CollectionID      string    `db:"collection_id"`
	UserID            string    `db:"user_id"`
	Body              string    `db:"body"`
	CreatedAt         time.Time `db:"created_at"`
	AuthorHandle      *string   `db:"author_handle"`
	AuthorDisplayName *string   `db:"author_display_name"`
}

func commentFromDTO(dto CommentDTO) domain.CommentItem {
	return domain.CommentItem{
		ID:        dto.ID,
		UserID:    dto.UserID,
		Author:    domain.AuthorLabel(dto.AuthorHandle, dto.AuthorDisplayName),
		Body:      dto.Body,
		CreatedAt: dto.CreatedAt,
	}
}

type CategoryDTO struct {
	ID                  string  `db:"id"`
	Slug                string  `db:"slug"`
	Title               string  `db:"title"`
	Description         *string `db:"description"`
	CoverImageURL       *string `db:"cover_image_url"`
	CoverImageSourceURL *string `db:"cover_image_source_url"`
}

func categoryFromDTO(dto CategoryDTO) domain.Category {
	return domain.Category{
		ID:                  dto.ID,
		Slug:                dto.Slug,
		Title:               dto.Title,
		Description:         deref(dto.Description),
		CoverImageURL:       dto.CoverImageURL,
		CoverImageSourceURL: dto.CoverImageSourceURL,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullIfEmpty maps blank optional input to SQL NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
