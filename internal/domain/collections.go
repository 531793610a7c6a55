package domain

import "time"

type CollectionKind string

const (
	CollectionKindCategory CollectionKind = "category"
	CollectionKindLoadout  CollectionKind = "loadout"
)

func ParseCollectionKind(value string) (CollectionKind, bool) {
	switch CollectionKind(value) {
	case CollectionKindCategory, CollectionKindLoadout:
		return CollectionKind(value), true
	}
	return "", false
}

type CollectionListItem struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Kind          CollectionKind `json:"kind"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Author        string         `json:"author"`
	CategorySlug  *string        `json:"categorySlug"`
	CoverImageURL *string        `json:"coverImageUrl"`
	IsPublic      bool           `json:"isPublic"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type Collection struct {
	ID         string
	Slug       string
	Kind       CollectionKind
	OwnerID    string
	IsPublic   bool
	CategoryID *string
}

type CollectionProductItem struct {
	ProductID   string  `json:"productId"`
	Slug        *string `json:"slug"`
	Name        string  `json:"name"`
	Brand       *string `json:"brand"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ProductURL  *string `json:"productUrl"`
	SourceURL   *string `json:"sourceUrl"`
	Note        *string `json:"note"`
	SortOrder   int     `json:"sortOrder"`
}

type CommentItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CollectionDetail struct {
	CollectionListItem
	OwnerID        string                  `json:"ownerId"`
	LikeCount      int64                   `json:"likeCount"`
	ViewerHasLiked bool                    `json:"viewerHasLiked"`
	Products       []CollectionProductItem `json:"products"`
	Comments       []CommentItem           `json:"comments"`
}

type LoadoutInput struct {
	OwnerID      string
	Title        string
	Description  string
	CategorySlug string
	CoverImage   string
	IsPublic     bool
}

type CollectionProductInput struct {
	ProductID   string
	Name        string
	Brand       string
	Description string
	ImageURL    string
	ProductURL  string
	SourceURL   string
	Note        string
}

type ReorderItem struct {
	ProductID string
	Note      string
}

type Product struct {
	ID          string  `json:"id"`
	Slug        *string `json:"slug"`
	Name        string  `json:"name"`
	Brand       *string `json:"brand"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ProductURL  *string `json:"productUrl"`
}

type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// AuthorLabel renders the public attribution for content owned by a profile.
func AuthorLabel(handle *string, displayName *string) string {
	if handle != nil && *handle != "" {
		return "@" + *handle
	}
	if displayName != nil && *displayName != "" {
		return *displayName
	}
	return "@unknown"
}
