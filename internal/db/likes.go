package db

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

//go:embed queries/delete-like.sql
var deleteLikeQuery string

//go:embed queries/insert-like.sql
var insertLikeQuery string

// ToggleLike likes a collection the user has not liked yet and unlikes it
// otherwise. A new like notifies the collection owner.
func (repo Repository) ToggleLike(ctx context.Context, identifier string, userID string) (state domain.LikeState, err error) {
	collection, err := repo.visibleCollection(ctx, identifier, userID)
	if err != nil {
		return
	}
	args := pgx.NamedArgs{"collection_id": collection.ID, "user_id": userID}
	err = repo.WithinTransaction(ctx, func(tx pgx.Tx) (err error) {
		removed, err := tx.Exec(ctx, deleteLikeQuery, args)
		if err != nil {
			return
		}
		if removed.RowsAffected() == 0 {
			_, err = tx.Exec(ctx, insertLikeQuery, args)
			if err != nil {
				return
			}
		}
		return tx.QueryRow(ctx, likeSummaryQuery, args).Scan(&state.LikeCount, &state.Liked)
	})
	if err != nil || !state.Liked {
		return
	}
	repo.notifyQuietly(ctx, domain.NewNotification{
		RecipientID: collection.OwnerID,
		ActorID:     userID,
		Type:        domain.NotificationLike,
		EntityType:  "collection",
		EntityID:    &collection.ID,
		Metadata: domain.Record{}.
			With("collectionSlug", collection.Slug).
			With("collectionTitle", collection.Title),
	})
	return
}
