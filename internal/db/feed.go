package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/paging"
)

type FeedParams struct {
	UserID string
	Limit  int
	Cursor *paging.Cursor
}

//go:embed queries/following-ids.sql
var followingIDsQuery string

//go:embed queries/following-feed.sql
var followingFeedQuery string

// FollowingFeed pages through public loadouts published by the accounts the
// user follows, newest first.
func (repo Repository) FollowingFeed(ctx context.Context, params FeedParams) (page paging.Page[domain.FeedItem], err error) {
	limit := paging.ClampLimit(params.Limit, paging.MaxFeedLimit)

	rows, err := repo.Query(ctx, followingIDsQuery, pgx.NamedArgs{
		"user_id":       params.UserID,
		"max_following": domain.MaxFeedFollowing,
	})
	if err != nil {
		err = fmt.Errorf("failed to execute query: %w", err)
		return
	}
	followingIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		err = fmt.Errorf("failed to read followed accounts: %w", err)
		return
	}
	if len(followingIDs) == 0 {
		page = paging.EmptyPage[domain.FeedItem]()
		return
	}

	loadouts, err := collectAll[FeedLoadoutDTO](repo.Query(ctx, followingFeedQuery, repo.withKeyset(pgx.NamedArgs{
		"owner_ids": followingIDs,
	}, params.Cursor, limit)))
	if err != nil {
		return
	}
	pageRows, nextCursor, hasMore := paging.Slice(loadouts, limit, func(row FeedLoadoutDTO) paging.Cursor {
		return paging.CursorAt(row.CreatedAt, row.ID)
	})

	ownerIDs := make([]string, 0, len(pageRows))
	for _, row := range pageRows {
		ownerIDs = append(ownerIDs, row.OwnerID)
	}
	owners, err := repo.ProfilesByIDs(ctx, ownerIDs)
	if err != nil {
		return
	}

	page = paging.Map(pageRows, nextCursor, hasMore, func(row FeedLoadoutDTO) (domain.FeedItem, bool) {
		author := "@unknown"
		if owner, ok := owners[row.OwnerID]; ok && owner.Handle != nil && *owner.Handle != "" {
			author = "@" + *owner.Handle
		}
		return domain.FeedItem{
			ID:            row.ID,
			Slug:          row.Slug,
			Title:         row.Title,
			Description:   deref(row.Description),
			CoverImageURL: row.CoverImageURL,
			Author:        author,
			CreatedAt:     row.CreatedAt,
		}, true
	})
	return
}
