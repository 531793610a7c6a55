package db_test

import (
	"context"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
)

const (
	collectionByIdentifierPattern = `FROM collections c\s+JOIN profiles p ON p.id = c.owner_id\s+LEFT JOIN categories cat ON cat.id = c.category_id\s+WHERE c.id = `
	collectionProductsPattern     = `FROM collection_products cp`
	insertLoadoutPattern          = `INSERT INTO collections`
	deleteLikePattern             = `DELETE FROM likes`
	insertLikePattern             = `INSERT INTO likes`
	likeSummaryPattern            = `bool_or`
)

var _ = Describe("Collections", func() {
	const (
		ownerID      = "00000000-0000-4000-8000-0000000000aa"
		viewerID     = "00000000-0000-4000-8000-0000000000bb"
		collectionID = "00000000-0000-4000-8000-000000000100"
	)
	var (
		mock pgxmock.PgxPoolIface
		repo db.Repository
		ctx  context.Context
	)

	collectionRows := func(kind string, isPublic bool) *pgxmock.Rows {
		return pgxmock.NewRows(collectionColumns).AddRow(
			collectionID, "desk-setup-abc123", kind, ownerID, ptr("00000000-0000-4000-8000-000000000200"), ptr("cat-001"),
			"Desk setup", ptr("My desk"), noString, isPublic, time.Now(), ptr("owner"), ptr("Owner"),
		)
	}

	BeforeEach(func() {
		ctx = context.Background()
		mock, repo = newMockRepository(db.Features{})
	})

	Describe("CollectionByIdentifier", func() {
		It("hides private collections from everyone but their owner", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", false))

			_, err := repo.CollectionByIdentifier(ctx, "desk-setup-abc123", viewerID)

			Expect(err).To(MatchError(db.ErrNotFound))
		})

		It("shows private collections to their owner", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", false))

			collection, err := repo.CollectionByIdentifier(ctx, collectionID, ownerID)

			Expect(err).NotTo(HaveOccurred())
			Expect(collection.Kind).To(Equal(domain.CollectionKindLoadout))
			Expect(collection.OwnerID).To(Equal(ownerID))
		})
	})

	Describe("DeleteLoadout", func() {
		It("forbids deleting someone else's loadout", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", true))

			err := repo.DeleteLoadout(ctx, collectionID, viewerID)

			Expect(err).To(MatchError(db.ErrForbidden))
		})

		It("does not treat category collections as loadouts", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("category", true))

			err := repo.DeleteLoadout(ctx, collectionID, ownerID)

			Expect(err).To(MatchError(db.ErrNotFound))
		})
	})

	Describe("CreateLoadout", func() {
		It("only accepts the fixed categories", func() {
			_, err := repo.CreateLoadout(ctx, domain.LoadoutInput{OwnerID: ownerID, Title: "Desk", CategorySlug: "cat-101"})

			Expect(err).To(MatchError(db.ErrInvalidCategory))
		})

		It("reports a slug collision as a plain conflict", func() {
			mock.ExpectQuery(activeCategoryPattern).WillReturnRows(categoryRows().AddRow(
				"00000000-0000-4000-8000-000000000200", "cat-001", "Category 1", noString, noString, noString))
			mock.ExpectQuery(insertLoadoutPattern).WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

			_, err := repo.CreateLoadout(ctx, domain.LoadoutInput{OwnerID: ownerID, Title: "Desk", CategorySlug: "cat-001", IsPublic: true})

			Expect(err).To(MatchError(db.ErrConflict))
			Expect(err).NotTo(MatchError(db.ErrUsernameTaken))
		})
	})

	Describe("ToggleLike", func() {
		It("likes a collection the user has not liked", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", true))
			mock.ExpectBegin()
			mock.ExpectExec(deleteLikePattern).WillReturnResult(pgxmock.NewResult("DELETE", 0))
			mock.ExpectExec(insertLikePattern).WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectQuery(likeSummaryPattern).WillReturnRows(pgxmock.NewRows([]string{"like_count", "liked"}).AddRow(int64(4), true))
			mock.ExpectCommit()

			state, err := repo.ToggleLike(ctx, collectionID, viewerID)

			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(domain.LikeState{Liked: true, LikeCount: 4}))
		})

		It("unlikes a collection the user already liked", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", true))
			mock.ExpectBegin()
			mock.ExpectExec(deleteLikePattern).WillReturnResult(pgxmock.NewResult("DELETE", 1))
			mock.ExpectQuery(likeSummaryPattern).WillReturnRows(pgxmock.NewRows([]string{"like_count", "liked"}).AddRow(int64(3), false))
			mock.ExpectCommit()

			state, err := repo.ToggleLike(ctx, collectionID, viewerID)

			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(domain.LikeState{Liked: false, LikeCount: 3}))
		})
	})

	Describe("ReorderCollectionProducts", func() {
		It("rejects duplicate products before touching the loadout's items", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", true))

			_, err := repo.ReorderCollectionProducts(ctx, collectionID, ownerID, []domain.ReorderItem{
				{ProductID: "00000000-0000-4000-8000-000000000301"},
				{ProductID: "00000000-0000-4000-8000-000000000301"},
			})

			var apiErr domain.ApiError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err.(domain.ApiError).Code).To(Equal(domain.ApiErrorInvalidItems))
		})

		It("requires every current product to be listed", func() {
			mock.ExpectQuery(collectionByIdentifierPattern).WillReturnRows(collectionRows("loadout", true))
			mock.ExpectBegin()
			mock.ExpectQuery(collectionProductsPattern).WillReturnRows(pgxmock.NewRows([]string{
				"product_id", "slug", "name", "brand", "description", "image_url", "product_url", "source_url", "note", "sort_order",
			}).
				AddRow("00000000-0000-4000-8000-000000000301", noString, "Lamp", noString, noString, noString, noString, noString, noString, int32(1)).
				AddRow("00000000-0000-4000-8000-000000000302", noString, "Chair", noString, noString, noString, noString, noString, noString, int32(2)))
			mock.ExpectRollback()

			_, err := repo.ReorderCollectionProducts(ctx, collectionID, ownerID, []domain.ReorderItem{
				{ProductID: "00000000-0000-4000-8000-000000000302"},
			})

			Expect(err).To(Equal(domain.ApiError{
				Code:    domain.ApiErrorInvalidItems,
				Message: "Reorder payload must include every product currently in this loadout.",
			}))
		})
	})
})
