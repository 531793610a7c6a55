package paging

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit         = 24
	MaxFeedLimit         = 100
	MaxNotificationLimit = 100
	MaxFollowListLimit   = 50
)

type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// ClampLimit keeps requested within [1, max].
func ClampLimit(requested int, max int) int {
	if requested < 1 {
		return 1
	}
	if requested > max {
		return max
	}
	return requested
}

// ParseLimit reads a limit query parameter. Missing, malformed and
// non-positive values fall back to DefaultLimit.
func ParseLimit(raw string, max int) int {
	requested, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || requested <= 0 {
		requested = DefaultLimit
	}
	return ClampLimit(requested, max)
}

// Slice trims rows fetched with limit+1 down to one page. The next cursor is
// taken from the last row kept.
func Slice[R any](rows []R, limit int, key func(R) Cursor) (pageRows []R, nextCursor *string, hasMore bool) {
	hasMore = len(rows) > limit
	pageRows = rows
	if hasMore {
		pageRows = rows[:limit]
	}
	if hasMore && len(pageRows) > 0 {
		encoded := Encode(key(pageRows[len(pageRows)-1]))
		nextCursor = &encoded
	}
	return
}

// Map converts a page of rows into a page of items, preserving the pagination
// metadata. Rows for which convert reports false are dropped.
func Map[R any, T any](rows []R, nextCursor *string, hasMore bool, convert func(R) (T, bool)) Page[T] {
	page := Page[T]{Items: make([]T, 0, len(rows)), NextCursor: nextCursor, HasMore: hasMore}
	for _, row := range rows {
		item, ok := convert(row)
		if !ok {
			continue
		}
		page.Items = append(page.Items, item)
	}
	return page
}
