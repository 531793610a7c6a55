package db_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/paging"
)

const (
	followingIDsPattern  = `SELECT following_id::text\s+FROM follows\s+WHERE follower_id = \S+\s+ORDER BY`
	followingFeedPattern = `FROM collections c\s+WHERE c.kind = 'loadout'`
	profilesByIDsPattern = `FROM profiles\s+WHERE id = ANY`
)

var feedColumns = []string{"id", "slug", "title", "description", "cover_image_url", "owner_id", "created_at"}

var _ = Describe("FollowingFeed", func() {
	const (
		viewerID = "00000000-0000-4000-8000-000000000001"
		authorID = "00000000-0000-4000-8000-000000000002"
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

	It("returns an empty page without reading loadouts when nothing is followed", func() {
		mock.ExpectQuery(followingIDsPattern).WillReturnRows(pgxmock.NewRows([]string{"following_id"}))

		page, err := repo.FollowingFeed(ctx, db.FeedParams{UserID: viewerID, Limit: 10})

		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(BeEmpty())
		Expect(page.HasMore).To(BeFalse())
		Expect(page.NextCursor).To(BeNil())
	})

	It("cuts the probe row and points the cursor at the last item kept", func() {
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(followingIDsPattern).
			WillReturnRows(pgxmock.NewRows([]string{"following_id"}).AddRow(authorID))
		mock.ExpectQuery(followingFeedPattern).
			WillReturnRows(pgxmock.NewRows(feedColumns).
				AddRow("00000000-0000-4000-8000-00000000000c", "third", "Third", noString, noString, authorID, base.Add(2*time.Hour)).
				AddRow("00000000-0000-4000-8000-00000000000b", "second", "Second", ptr("desc"), noString, authorID, base.Add(time.Hour)).
				AddRow("00000000-0000-4000-8000-00000000000a", "first", "First", noString, noString, authorID, base))
		mock.ExpectQuery(profilesByIDsPattern).
			WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), authorID, ptr("alice"), ptr("Alice")))

		page, err := repo.FollowingFeed(ctx, db.FeedParams{UserID: viewerID, Limit: 2})

		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(HaveLen(2))
		Expect(page.Items[0].Slug).To(Equal("third"))
		Expect(page.Items[1].Description).To(Equal("desc"))
		Expect(page.Items[1].Author).To(Equal("@alice"))
		Expect(page.HasMore).To(BeTrue())
		Expect(page.NextCursor).NotTo(BeNil())
		cursor := paging.Decode(*page.NextCursor)
		Expect(cursor).NotTo(BeNil())
		Expect(cursor.TiebreakID).To(Equal("00000000-0000-4000-8000-00000000000b"))
		createdAt, ok := cursor.Time()
		Expect(ok).To(BeTrue())
		Expect(createdAt).To(BeTemporally("==", base.Add(time.Hour)))
	})

	It("labels loadouts of authors without a handle as unknown", func() {
		mock.ExpectQuery(followingIDsPattern).
			WillReturnRows(pgxmock.NewRows([]string{"following_id"}).AddRow(authorID))
		mock.ExpectQuery(followingFeedPattern).
			WillReturnRows(pgxmock.NewRows(feedColumns).
				AddRow("00000000-0000-4000-8000-00000000000a", "only", "Only", noString, noString, authorID, time.Now()))
		mock.ExpectQuery(profilesByIDsPattern).WillReturnRows(pgxmock.NewRows(profileColumns))

		page, err := repo.FollowingFeed(ctx, db.FeedParams{UserID: viewerID, Limit: 24})

		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(HaveLen(1))
		Expect(page.Items[0].Author).To(Equal("@unknown"))
		Expect(page.HasMore).To(BeFalse())
		Expect(page.NextCursor).To(BeNil())
	})
})
