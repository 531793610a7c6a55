package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

//go:embed queries/insert-comment.sql
var insertCommentQuery string

//go:embed queries/comment-by-id.sql
var commentByIDQuery string

func (repo Repository) commentByID(ctx context.Context, commentID string) (CommentDTO, error) {
	if _, err := uuid.Parse(commentID); err != nil {
		return CommentDTO{}, ErrNotFound
	}
	return collectOne[CommentDTO](repo.Query(ctx, commentByIDQuery, pgx.NamedArgs{"id": commentID}))
}

// CreateComment adds a comment to a visible collection and notifies its
// owner. Each comment is its own notification entity, so repeat comments on
// one collection all reach the owner.
func (repo Repository) CreateComment(ctx context.Context, identifier string, userID string, body string) (comment domain.CommentItem, err error) {
	collection, err := repo.visibleCollection(ctx, identifier, userID)
	if err != nil {
		return
	}
	var id string
	err = repo.QueryRow(ctx, insertCommentQuery, pgx.NamedArgs{
		"collection_id": collection.ID,
		"user_id":       userID,
		"body":          body,
	}).Scan(&id)
	if err != nil {
		err = fmt.Errorf("failed to insert comment: %w", err)
		return
	}
	dto, err := repo.commentByID(ctx, id)
	if err != nil {
		return
	}
	comment = commentFromDTO(dto)

	repo.notifyQuietly(ctx, domain.NewNotification{
		RecipientID: collection.OwnerID,
		ActorID:     userID,
		Type:        domain.NotificationComment,
		EntityType:  "comment",
		EntityID:    &comment.ID,
		Metadata: domain.Record{}.
			With("collectionId", collection.ID).
			With("collectionSlug", collection.Slug).
			With("collectionTitle", collection.Title),
	})
	return
}

// ownedComment resolves a comment only its author may change.
func (repo Repository) ownedComment(ctx context.Context, commentID string, userID string) (dto CommentDTO, err error) {
	dto, err = repo.commentByID(ctx, commentID)
	if err != nil {
		return
	}
	if dto.UserID != userID {
		err = ErrForbidden
	}
	return
}

//go:embed queries/update-comment.sql
var updateCommentQuery string

func (repo Repository) UpdateComment(ctx context.Context, commentID string, userID string, body string) (comment domain.CommentItem, err error) {
	dto, err := repo.ownedComment(ctx, commentID, userID)
	if err != nil {
		return
	}
	_, err = repo.Exec(ctx, updateCommentQuery, pgx.NamedArgs{"id": dto.ID, "body": body})
	if err != nil {
		err = fmt.Errorf("failed to update comment: %w", err)
		return
	}
	dto.Body = body
	comment = commentFromDTO(dto)
	return
}

//go:embed queries/delete-comment.sql
var deleteCommentQuery string

func (repo Repository) DeleteComment(ctx context.Context, commentID string, userID string) error {
	dto, err := repo.ownedComment(ctx, commentID, userID)
	if err != nil {
		return err
	}
	_, err = repo.Exec(ctx, deleteCommentQuery, pgx.NamedArgs{"id": dto.ID})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
