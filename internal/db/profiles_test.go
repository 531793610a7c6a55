package db_test

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
)

const (
	profileByIDPattern   = `FROM profiles\s+WHERE id = [@$]`
	handleOwnerPattern   = `FROM profiles\s+WHERE handle = \S+\s+LIMIT 1`
	upsertProfilePattern = `INSERT INTO profiles`
)

var _ = Describe("Profiles", func() {
	const (
		userID  = "00000000-0000-4000-8000-0000000000aa"
		otherID = "00000000-0000-4000-8000-0000000000bb"
	)
	var (
		mock pgxmock.PgxPoolIface
		repo db.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock, repo = newMockRepository(db.Features{Analytics: true})
	})

	Describe("IsUsernameAvailable", func() {
		It("is available when nobody owns the handle", func() {
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}))

			Expect(repo.IsUsernameAvailable(ctx, "alice", "")).To(BeTrue())
		})

		It("is available to the user already owning it", func() {
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(userID))

			Expect(repo.IsUsernameAvailable(ctx, "alice", userID)).To(BeTrue())
		})

		It("is taken when someone else owns it", func() {
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(otherID))

			Expect(repo.IsUsernameAvailable(ctx, "alice", userID)).To(BeFalse())
		})
	})

	Describe("SetupProfile", func() {
		setup := domain.ProfileSetup{UserID: userID, Username: "Alice", DisplayName: "Alice A."}

		It("stores the normalized handle and records the signup milestone", func() {
			mock.ExpectQuery(profileByIDPattern).WillReturnRows(pgxmock.NewRows(profileColumns))
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}))
			mock.ExpectQuery(upsertProfilePattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), userID, ptr("alice"), ptr("Alice A.")))
			mock.ExpectExec(trackMilestonePattern).WillReturnResult(pgxmock.NewResult("INSERT", 1))

			profile, err := repo.SetupProfile(ctx, setup)

			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Handle).To(HaveValue(Equal("alice")))
			Expect(domain.IsProfileComplete(&profile)).To(BeTrue())
		})

		It("refuses to change a handle that is already set", func() {
			mock.ExpectQuery(profileByIDPattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), userID, ptr("bob"), ptr("Bob")))

			_, err := repo.SetupProfile(ctx, setup)

			Expect(err).To(MatchError(db.ErrUsernameImmutable))
		})

		It("reports a taken handle as a conflict", func() {
			mock.ExpectQuery(profileByIDPattern).WillReturnRows(pgxmock.NewRows(profileColumns))
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(otherID))

			_, err := repo.SetupProfile(ctx, setup)

			Expect(err).To(MatchError(db.ErrUsernameTaken))
			Expect(err).To(MatchError(db.ErrConflict))
		})

		It("reports a handle claimed concurrently as a conflict", func() {
			mock.ExpectQuery(profileByIDPattern).WillReturnRows(pgxmock.NewRows(profileColumns))
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}))
			mock.ExpectQuery(upsertProfilePattern).WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

			_, err := repo.SetupProfile(ctx, setup)

			Expect(err).To(MatchError(db.ErrUsernameTaken))
			Expect(err).To(MatchError(db.ErrConflict))
		})
	})

	Describe("EnsureProfileFromMetadata", func() {
		It("leaves complete profiles alone", func() {
			mock.ExpectQuery(profileByIDPattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), userID, ptr("alice"), ptr("Alice")))

			profile, err := repo.EnsureProfileFromMetadata(ctx, domain.AuthInfo{
				UserID:             userID,
				PendingHandle:      "other",
				PendingDisplayName: "Other",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Handle).To(HaveValue(Equal("alice")))
		})

		It("returns nil when there is no profile and no usable signup metadata", func() {
			mock.ExpectQuery(profileByIDPattern).WillReturnRows(pgxmock.NewRows(profileColumns))

			profile, err := repo.EnsureProfileFromMetadata(ctx, domain.AuthInfo{UserID: userID, PendingHandle: "admin", PendingDisplayName: "Admin"})

			Expect(err).NotTo(HaveOccurred())
			Expect(profile).To(BeNil())
		})

		It("completes the profile from signup metadata", func() {
			mock.ExpectQuery(profileByIDPattern).WillReturnRows(pgxmock.NewRows(profileColumns))
			mock.ExpectQuery(handleOwnerPattern).WillReturnRows(pgxmock.NewRows([]string{"id"}))
			mock.ExpectQuery(upsertProfilePattern).
				WillReturnRows(profileRow(pgxmock.NewRows(profileColumns), userID, ptr("new_user"), ptr("New User")))

			profile, err := repo.EnsureProfileFromMetadata(ctx, domain.AuthInfo{
				UserID:             userID,
				PendingHandle:      "New_User",
				PendingDisplayName: "New User",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(domain.IsProfileComplete(profile)).To(BeTrue())
		})
	})

	Describe("FollowStats", func() {
		It("counts both directions", func() {
			mock.MatchExpectationsInOrder(false)
			mock.ExpectQuery(`WHERE following_id = `).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
			mock.ExpectQuery(`WHERE follower_id = `).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

			stats, err := repo.FollowStats(ctx, userID)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(domain.ProfileStats{FollowersCount: 3, FollowingCount: 5}))
		})
	})
})
