package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	FixedCategoryCount   = 100
	FixedCategoryMinSlug = "cat-001"
	FixedCategoryMaxSlug = "cat-100"
)

var fixedCategorySlugPattern = regexp.MustCompile(`^cat-(00[1-9]|0[1-9][0-9]|100)$`)

func NormalizeCategorySlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func IsFixedCategorySlug(slug string) bool {
	return fixedCategorySlugPattern.MatchString(NormalizeCategorySlug(slug))
}

// FixedCategorySlug returns the slug of the n-th fixed category, 1-based.
func FixedCategorySlug(n int) string {
	return fmt.Sprintf("cat-%03d", n)
}

type Category struct {
	ID                  string  `json:"id"`
	Slug                string  `json:"slug"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	CoverImageURL       *string `json:"coverImageUrl"`
	CoverImageSourceURL *string `json:"coverImageSourceUrl"`
}

type CategoryWithLoadouts struct {
	Category Category             `json:"category"`
	Loadouts []CollectionListItem `json:"loadouts"`
}
