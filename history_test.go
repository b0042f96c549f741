package altvote_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"

	. "github.com/bbengfort/altvote"
)

var _ = Describe("History", func() {

	It("should be empty before counting starts", func() {
		history := NewHistory()
		Ω(history.Len()).Should(BeZero())
		Ω(history.Last()).Should(BeNil())
		Ω(history.Rounds()).Should(BeEmpty())
		Ω(history.Created().IsZero()).Should(BeFalse())
	})

	It("should record every round of a tally", func() {
		election := fixture("testdata/redistribute.csv", nil)
		_, err := election.Count()
		Ω(err).ShouldNot(HaveOccurred())

		history := election.History()
		Ω(history.Tally()).Should(Equal(election.TallyID()))
		Ω(history.Len()).Should(Equal(3))
		Ω(history.Last()).Should(Equal(history.Rounds()[2]))

		rounds := history.Rounds()
		Ω(rounds[0]).Should(PointTo(MatchAllFields(Fields{
			"Stage":      Equal(1),
			"Counts":     Equal([]int{4, 3, 2, 1}),
			"Eliminated": Equal(-1),
			"Held":       BeZero(),
			"Continuing": Equal(10),
			"Exhausted":  BeZero(),
			"Timestamp":  Not(BeZero()),
		})))

		Ω(rounds[1].Stage).Should(Equal(2))
		Ω(rounds[1].Counts).Should(Equal([]int{4, 3, 2, 0}))
		Ω(rounds[1].Eliminated).Should(Equal(3))
		Ω(rounds[1].Held).Should(Equal(1))
		Ω(rounds[1].Continuing).Should(Equal(9))
		Ω(rounds[1].Exhausted).Should(Equal(1))

		Ω(rounds[2].Stage).Should(Equal(3))
		Ω(rounds[2].Counts).Should(Equal([]int{4, 3, 0, 0}))
		Ω(rounds[2].Eliminated).Should(Equal(2))
		Ω(rounds[2].Held).Should(Equal(2))
		Ω(rounds[2].Continuing).Should(Equal(7))
		Ω(rounds[2].Exhausted).Should(Equal(3))

		Ω(history.Updated()).Should(Equal(rounds[2].Timestamp))
	})

	It("should start over when a new tally starts", func() {
		election := fixture("testdata/redistribute.csv", nil)
		_, err := election.Count()
		Ω(err).ShouldNot(HaveOccurred())
		previous := election.History().Rounds()

		Ω(election.StartCounting()).Should(Succeed())
		Ω(election.History().Len()).Should(Equal(1))
		Ω(election.History().Tally()).Should(Equal(election.TallyID()))

		// rounds already handed out are not modified
		Ω(previous).Should(HaveLen(3))
		Ω(previous[2].Stage).Should(Equal(3))
	})

})
