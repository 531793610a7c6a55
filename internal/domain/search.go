package domain

import "strings"

type SearchType string

const (
	SearchLoadouts   SearchType = "loadouts"
	SearchCategories SearchType = "categories"
	SearchProducts   SearchType = "products"
	SearchProfiles   SearchType = "profiles"
)

var allSearchTypes = []SearchType{SearchLoadouts, SearchCategories, SearchProducts, SearchProfiles}

const (
	DefaultSearchLimit = 12
	MaxSearchLimit     = 24
)

// NormalizeSearchTypes parses a comma separated list of search types. Unknown
// entries are ignored and an empty selection means every type.
func NormalizeSearchTypes(raw string) Set[SearchType] {
	var types []SearchType
	for _, part := range strings.Split(raw, ",") {
		candidate := SearchType(strings.ToLower(strings.TrimSpace(part)))
		for _, known := range allSearchTypes {
			if candidate == known {
				types = append(types, candidate)
			}
		}
	}
	if len(types) == 0 {
		return NewSet(allSearchTypes...)
	}
	return NewSet(types...)
}

// NormalizeSearchQuery trims the query and strips LIKE wildcards.
func NormalizeSearchQuery(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
}

type SearchParams struct {
	Query        string
	Types        Set[SearchType]
	CategorySlug string
	LimitPerType int
}

type SearchLoadoutItem struct {
	ID            string  `json:"id"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	CoverImageURL *string `json:"coverImageUrl"`
	Author        string  `json:"author"`
}

type SearchProfileItem struct {
	ID          string  `json:"id"`
	Handle      string  `json:"handle"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	Bio         string  `json:"bio"`
}

type SearchResults struct {
	Query      string              `json:"query"`
	Types      Set[SearchType]     `json:"types"`
	Loadouts   []SearchLoadoutItem `json:"loadouts"`
	Categories []Category          `json:"categories"`
	Products   []Product           `json:"products"`
	Profiles   []SearchProfileItem `json:"profiles"`
}
