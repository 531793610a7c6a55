package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/paging"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

//go:embed queries/insert-follow.sql
var insertFollowQuery string

// Follow makes followerID follow the profile owning targetHandle. Following
// an account twice succeeds with created=false.
func (repo Repository) Follow(ctx context.Context, followerID string, targetHandle string) (target domain.Profile, created bool, err error) {
	target, err = repo.ProfileByHandle(ctx, targetHandle)
	if err != nil {
		return
	}
	if target.ID == followerID {
		err = ErrSelfFollow
		return
	}
	res, err := repo.Exec(ctx, insertFollowQuery, pgx.NamedArgs{"follower_id": followerID, "following_id": target.ID})
	if isForeignKeyViolation(err) {
		err = ErrNotFound
	}
	if err != nil {
		return
	}
	created = res.RowsAffected() > 0
	if !created {
		return
	}

	handle := deref(target.Handle)
	repo.trackMilestoneQuietly(ctx, followerID, domain.MilestoneFirstFollow, domain.Record{}.
		With("targetUserId", target.ID).
		With("targetHandle", handle))
	repo.notifyQuietly(ctx, domain.NewNotification{
		RecipientID: target.ID,
		ActorID:     followerID,
		Type:        domain.NotificationFollow,
		EntityType:  "profile",
		EntityID:    &followerID,
		Metadata:    domain.Record{}.With("targetHandle", handle),
	})
	return
}

//go:embed queries/delete-follow.sql
var deleteFollowQuery string

func (repo Repository) Unfollow(ctx context.Context, followerID string, targetHandle string) (target domain.Profile, err error) {
	target, err = repo.ProfileByHandle(ctx, targetHandle)
	if err != nil {
		return
	}
	_, err = repo.Exec(ctx, deleteFollowQuery, pgx.NamedArgs{"follower_id": followerID, "following_id": target.ID})
	if err != nil {
		err = fmt.Errorf("failed to delete follow: %w", err)
	}
	return
}

type FollowListParams struct {
	TargetUserID string
	Direction    domain.FollowDirection
	ViewerUserID string
	Limit        int
	Cursor       *paging.Cursor
}

//go:embed queries/list-followers.sql
var listFollowersQuery string

//go:embed queries/list-following.sql
var listFollowingQuery string

// ListFollows pages through the followers or followed accounts of a user,
// ordered by when the follow happened. Accounts that have not finished
// onboarding are dropped after the page is cut, so a page can hold fewer
// than Limit items while HasMore is still true.
func (repo Repository) ListFollows(ctx context.Context, params FollowListParams) (page paging.Page[domain.FollowListItem], err error) {
	limit := paging.ClampLimit(params.Limit, paging.MaxFollowListLimit)
	query := listFollowersQuery
	if params.Direction == domain.FollowingDirection {
		query = listFollowingQuery
	}

	edges, err := collectAll[FollowEdgeDTO](repo.Query(ctx, query, repo.withKeyset(pgx.NamedArgs{
		"target_id": params.TargetUserID,
	}, params.Cursor, limit)))
	if err != nil {
		return
	}
	pageRows, nextCursor, hasMore := paging.Slice(edges, limit, func(edge FollowEdgeDTO) paging.Cursor {
		return paging.CursorAt(edge.CreatedAt, edge.UserID)
	})

	userIDs := make([]string, 0, len(pageRows))
	for _, edge := range pageRows {
		userIDs = append(userIDs, edge.UserID)
	}
	profiles, err := repo.ProfilesByIDs(ctx, userIDs)
	if err != nil {
		return
	}
	followed, err := repo.followedBy(ctx, params.ViewerUserID, userIDs)
	if err != nil {
		return
	}

	page = paging.Map(pageRows, nextCursor, hasMore, func(edge FollowEdgeDTO) (item domain.FollowListItem, ok bool) {
		profile, ok := publicProfileFromDTO(profiles[edge.UserID])
		if !ok {
			return
		}
		return domain.FollowListItem{
			ID:                profile.ID,
			Handle:            profile.Handle,
			DisplayName:       profile.DisplayName,
			AvatarURL:         profile.AvatarURL,
			Bio:               profile.Bio,
			ViewerIsFollowing: params.ViewerUserID != "" && params.ViewerUserID != profile.ID && followed[profile.ID],
		}, true
	})
	if dropped := len(pageRows) - len(page.Items); dropped > 0 {
		repo.log.WithField("target_id", params.TargetUserID).WithField("dropped", dropped).
			Debug("dropped follow list rows with incomplete profiles")
	}
	return
}
