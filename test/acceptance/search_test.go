package acceptance

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/test/acceptance/testutils"
)

type searchResults struct {
	Loadouts   []domain.SearchLoadoutItem `json:"loadouts"`
	Categories []domain.Category          `json:"categories"`
	Profiles   []domain.SearchProfileItem `json:"profiles"`
}

func search(path string) (results searchResults) {
	res := apiClient.Get(path)
	Expect(res).To(HaveHTTPStatus(http.StatusOK))
	testutils.ReadData(res, &results)
	return
}

func loadoutTitles(results searchResults) (titles []string) {
	for _, item := range results.Loadouts {
		titles = append(titles, item.Title)
	}
	return
}

var _ = Describe("Search", func() {
	var owner testutils.ProfileFixture
	base := time.Date(2024, time.September, 10, 9, 30, 0, 0, time.UTC)

	BeforeEach(func(ctx context.Context) {
		owner = fixtures.Profile(ctx, "owner", "Owner")
		fixtures.Loadout(ctx, owner.ID, "Camping kit", base, true)
		fixtures.Loadout(ctx, owner.ID, "Desk setup", base.Add(time.Minute), true)
		fixtures.Loadout(ctx, owner.ID, "Secret desk", base.Add(2*time.Minute), false)
	})

	It("finds public loadouts matching the query", func() {
		results := search("/search?q=desk&types=loadouts")
		Expect(loadoutTitles(results)).To(Equal([]string{"Desk setup"}))
		Expect(results.Loadouts[0].Author).To(Equal("@owner"))
	})

	It("treats wildcards in the query as literal noise", func() {
		Expect(loadoutTitles(search("/search?q=%25&types=loadouts"))).To(Equal([]string{"Desk setup", "Camping kit"}))
		Expect(search("/search?q=d%25sk&types=loadouts").Loadouts).To(BeEmpty())
	})

	It("narrows loadouts to an active category", func() {
		Expect(search("/search?types=loadouts&category=cat-001").Loadouts).To(HaveLen(2))
		Expect(search("/search?types=loadouts&category=CAT-002").Loadouts).To(BeEmpty())
	})

	It("ignores categories that do not exist", func() {
		Expect(search("/search?types=loadouts&category=nowhere").Loadouts).To(HaveLen(2))
	})

	It("caps every type at the requested limit", func() {
		Expect(search("/search?q=category%207&types=categories").Categories).To(HaveLen(11))
		Expect(search("/search?q=category%207&types=categories&limit=3").Categories).To(HaveLen(3))
		Expect(search("/search?q=loadouts&types=categories&limit=500").Categories).To(HaveLen(domain.MaxSearchLimit))
		Expect(search("/search?q=loadouts&types=categories").Categories).To(HaveLen(domain.DefaultSearchLimit))
	})

	It("leaves out profiles that have not finished onboarding", func(ctx context.Context) {
		fixtures.Profile(ctx, "ownerless", "")

		results := search("/search?q=owner&types=profiles")
		Expect(results.Profiles).To(HaveLen(1))
		Expect(results.Profiles[0].Handle).To(Equal("owner"))
	})

	It("only searches the requested types", func() {
		results := search("/search?q=owner&types=profiles")
		Expect(results.Loadouts).To(BeEmpty())
		Expect(results.Categories).To(BeEmpty())
		Expect(results.Profiles[0].ID).To(Equal(owner.ID.String()))
	})
})
