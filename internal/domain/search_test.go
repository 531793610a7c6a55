package domain

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeSearchTypes", func() {
	It("defaults to every type", func() {
		Expect(NormalizeSearchTypes("")).To(Equal(NewSet(SearchLoadouts, SearchCategories, SearchProducts, SearchProfiles)))
	})

	It("ignores unknown types", func() {
		Expect(NormalizeSearchTypes(" Products,widgets,profiles,products")).To(Equal(NewSet(SearchProducts, SearchProfiles)))
	})

	It("falls back to every type when nothing is recognized", func() {
		Expect(NormalizeSearchTypes("widgets")).To(HaveLen(4))
	})
})

var _ = Describe("NormalizeSearchQuery", func() {
	It("strips wildcards and whitespace", func() {
		Expect(NormalizeSearchQuery("  50% tent ")).To(Equal("50 tent"))
	})
})
