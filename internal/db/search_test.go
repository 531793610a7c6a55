package db_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
)

const (
	searchLoadoutsPattern   = `WITH category AS`
	searchCategoriesPattern = `FROM categories\s+WHERE is_active\s+AND \(\S+ = ''`
	searchProductsPattern   = `FROM products\s+WHERE`
	searchProfilesPattern   = `FROM profiles\s+WHERE handle IS NOT NULL`
)

var productColumns = []string{"id", "slug", "name", "brand", "description", "image_url", "product_url"}

var _ = Describe("Search", func() {
	var (
		mock pgxmock.PgxPoolIface
		repo db.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock, repo = newMockRepository(db.Features{})
	})

	It("searches only the requested types", func() {
		mock.ExpectQuery(searchProfilesPattern).WillReturnRows(pgxmock.NewRows(profileColumns))

		results, err := repo.Search(ctx, domain.SearchParams{
			Query: "desk",
			Types: domain.NewSet(domain.SearchProfiles),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(results.Profiles).To(BeEmpty())
		Expect(results.Loadouts).NotTo(BeNil())
		Expect(results.Categories).NotTo(BeNil())
		Expect(results.Products).NotTo(BeNil())
	})

	It("leaves out profiles that have not finished onboarding", func() {
		rows := pgxmock.NewRows(profileColumns)
		profileRow(rows, "00000000-0000-4000-8000-0000000000aa", ptr("alice"), ptr("Alice"))
		profileRow(rows, "00000000-0000-4000-8000-0000000000bb", ptr("pending"), ptr(""))
		mock.ExpectQuery(searchProfilesPattern).WillReturnRows(rows)

		results, err := repo.Search(ctx, domain.SearchParams{
			Query: "a",
			Types: domain.NewSet(domain.SearchProfiles),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(results.Profiles).To(HaveLen(1))
		Expect(results.Profiles[0].Handle).To(Equal("alice"))
	})

	It("searches every type when none is requested", func() {
		mock.MatchExpectationsInOrder(false)
		mock.ExpectQuery(searchLoadoutsPattern).WillReturnRows(pgxmock.NewRows(collectionColumns).AddRow(
			"00000000-0000-4000-8000-000000000100", "desk-setup-abc123", "loadout", "00000000-0000-4000-8000-0000000000aa",
			ptr("00000000-0000-4000-8000-000000000200"), ptr("cat-001"), "Desk setup", ptr("My desk"), noString, true,
			time.Now(), ptr("owner"), ptr("Owner"),
		))
		mock.ExpectQuery(searchCategoriesPattern).WillReturnRows(categoryRows().AddRow(
			"00000000-0000-4000-8000-000000000200", "cat-001", "Desks", noString, noString, noString))
		mock.ExpectQuery(searchProductsPattern).WillReturnRows(pgxmock.NewRows(productColumns).AddRow(
			"00000000-0000-4000-8000-000000000301", noString, "Desk lamp", ptr("Lumen"), noString, noString, noString))
		mock.ExpectQuery(searchProfilesPattern).WillReturnRows(pgxmock.NewRows(profileColumns))

		results, err := repo.Search(ctx, domain.SearchParams{Query: " Desk "})

		Expect(err).NotTo(HaveOccurred())
		Expect(results.Query).To(Equal("Desk"))
		Expect(results.Types).To(Equal(domain.NormalizeSearchTypes("")))
		Expect(results.Loadouts).To(HaveLen(1))
		Expect(results.Loadouts[0].Author).To(Equal("@owner"))
		Expect(results.Categories).To(HaveLen(1))
		Expect(results.Products).To(HaveLen(1))
		Expect(results.Products[0].Name).To(Equal("Desk lamp"))
		Expect(results.Profiles).To(BeEmpty())
	})

	It("fails when any type fails", func() {
		mock.ExpectQuery(searchCategoriesPattern).WillReturnError(errors.New("connection reset"))

		_, err := repo.Search(ctx, domain.SearchParams{
			Query: "desk",
			Types: domain.NewSet(domain.SearchCategories),
		})

		Expect(err).To(MatchError(ContainSubstring("categories: connection reset")))
	})

	Describe("SearchProducts", func() {
		It("lists products newest first", func() {
			mock.ExpectQuery(searchProductsPattern).WillReturnRows(pgxmock.NewRows(productColumns).
				AddRow("00000000-0000-4000-8000-000000000302", ptr("chair-x1"), "Chair", noString, ptr("Tall"), noString, noString).
				AddRow("00000000-0000-4000-8000-000000000301", noString, "Lamp", ptr("Lumen"), noString, noString, noString))

			products, err := repo.SearchProducts(ctx, "", 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
			Expect(products[0].Slug).To(HaveValue(Equal("chair-x1")))
			Expect(products[0].Description).To(Equal("Tall"))
			Expect(products[1].Description).To(BeEmpty())
		})

		It("returns an empty list rather than nil", func() {
			mock.ExpectQuery(searchProductsPattern).WillReturnRows(pgxmock.NewRows(productColumns))

			products, err := repo.SearchProducts(ctx, "nothing", 500)

			Expect(err).NotTo(HaveOccurred())
			Expect(products).NotTo(BeNil())
			Expect(products).To(BeEmpty())
		})
	})
})
