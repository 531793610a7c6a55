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
	"github.com/technopolitica/loadouts/internal/paging"
)

const (
	listFollowersPattern   = `FROM follows f\s+WHERE f.following_id`
	viewerFollowsPattern   = `FROM follows\s+WHERE follower_id = \S+\s+AND following_id = ANY`
	profileByHandlePattern = `FROM profiles\s+WHERE handle`
	insertFollowPattern    = `INSERT INTO follows`
)

var _ = Describe("Follows", func() {
	const (
		targetID = "00000000-0000-4000-8000-0000000000aa"
		viewerID = "00000000-0000-4000-8000-0000000000bb"
		firstID  = "00000000-0000-4000-8000-000000000001"
		secondID = "00000000-0000-4000-8000-000000000002"
		thirdID  = "00000000-0000-4000-8000-000000000003"
	)
	var (
		mock pgxmock.PgxPoolIface
		repo db.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		mock, repo = newMockRepository(db.Features{})
		ctx = context.Background()
	})

	Describe("ListFollows", func() {
		It("drops accounts that have not finished onboarding but keeps the page boundary", func() {
			base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
			mock.ExpectQuery(listFollowersPattern).
				WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).
					AddRow(firstID, base.Add(2*time.Minute)).
					AddRow(secondID, base.Add(time.Minute)).
					AddRow(thirdID, base))
			rows := pgxmock.NewRows(profileColumns)
			profileRow(rows, firstID, ptr("first"), ptr("First"))
			profileRow(rows, secondID, noString, ptr("Second"))
			mock.ExpectQuery(profilesByIDsPattern).WillReturnRows(rows)
			mock.ExpectQuery(viewerFollowsPattern).
				WillReturnRows(pgxmock.NewRows([]string{"following_id"}).AddRow(firstID))

			page, err := repo.ListFollows(ctx, db.FollowListParams{
				TargetUserID: targetID,
				Direction:    domain.FollowersDirection,
				ViewerUserID: viewerID,
				Limit:        2,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Handle).To(Equal("first"))
			Expect(page.Items[0].ViewerIsFollowing).To(BeTrue())
			Expect(page.HasMore).To(BeTrue())
			Expect(page.NextCursor).NotTo(BeNil())
			Expect(paging.Decode(*page.NextCursor).TiebreakID).To(Equal(secondID))
		})

		It("skips the follow lookup for anonymous viewers", func() {
			mock.ExpectQuery(listFollowersPattern).
				WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow(firstID, time.Now()))
			mock.ExpectQuery(profilesByIDsPattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), firstID, ptr("first"), ptr("First")))

			page, err := repo.ListFollows(ctx, db.FollowListParams{
				TargetUserID: targetID,
				Direction:    domain.FollowersDirection,
				Limit:        10,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].ViewerIsFollowing).To(BeFalse())
			Expect(page.HasMore).To(BeFalse())
		})
	})

	Describe("Follow", func() {
		It("refuses to follow yourself", func() {
			mock.ExpectQuery(profileByHandlePattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), viewerID, ptr("me"), ptr("Me")))

			_, _, err := repo.Follow(ctx, viewerID, "me")

			Expect(err).To(MatchError(db.ErrSelfFollow))
		})

		It("reports an existing follow as not created", func() {
			mock.ExpectQuery(profileByHandlePattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), targetID, ptr("target"), ptr("Target")))
			mock.ExpectExec(insertFollowPattern).WillReturnResult(pgxmock.NewResult("INSERT", 0))

			target, created, err := repo.Follow(ctx, viewerID, "Target")

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(target.ID).To(Equal(targetID))
		})

		It("treats a vanished target as missing", func() {
			mock.ExpectQuery(profileByHandlePattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), targetID, ptr("target"), ptr("Target")))
			mock.ExpectExec(insertFollowPattern).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

			_, _, err := repo.Follow(ctx, viewerID, "target")

			Expect(err).To(MatchError(db.ErrNotFound))
		})

		It("returns not found for unknown handles", func() {
			mock.ExpectQuery(profileByHandlePattern).WillReturnRows(pgxmock.NewRows(profileColumns))

			_, _, err := repo.Follow(ctx, viewerID, "ghost")

			Expect(err).To(MatchError(db.ErrNotFound))
		})
	})
})
