package domain

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Set", func() {
	It("marshals to an ordered JSON array", func() {
		Expect(json.Marshal(NewSet("hiking", "coffee"))).
			To(MatchJSON(`["coffee", "hiking"]`))
	})

	It("marshals nil as an empty array", func() {
		var empty Set[string]
		Expect(json.Marshal(empty)).To(MatchJSON(`[]`))
	})

	It("unmarshals from JSON array", func() {
		var output Set[string]
		err := json.Unmarshal([]byte(`["hiking", "coffee"]`), &output)
		Expect(err).NotTo(HaveOccurred())

		Expect(output).To(Equal(NewSet("hiking", "coffee")))
	})

	It("removes duplicates", func() {
		Expect(NewSet("coffee", "hiking", "coffee")).To(Equal(
			NewSet("coffee", "hiking"),
		))
	})

	It("compares equal with other sets w/ same elements regardless of ordering", func() {
		Expect(NewSet("coffee", "hiking")).To(Equal(
			NewSet("hiking", "coffee"),
		))
	})

	It("reports membership", func() {
		set := NewSet(SearchProfiles, SearchLoadouts)
		Expect(set.Contains(SearchLoadouts)).To(BeTrue())
		Expect(set.Contains(SearchProducts)).To(BeFalse())
	})
})
