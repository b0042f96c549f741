package altvote_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/bbengfort/altvote"
)

// Loads a ballot fixture into a new election with the default roster.
func fixture(path string, rng Chooser) *Election {
	election := NewElection(rng, DefaultCandidates...)
	_, err := election.LoadVotes(path)
	Ω(err).ShouldNot(HaveOccurred())
	return election
}

// Returns the count of every candidate in ID order.
func counts(election *Election) []int {
	candidates := election.Candidates()
	counts := make([]int, len(candidates))
	for i, candidate := range candidates {
		counts[i] = candidate.Count()
	}
	return counts
}

// Returns the number of eliminated candidates.
func eliminated(election *Election) (n int) {
	for _, candidate := range election.Candidates() {
		if candidate.IsEliminated() {
			n++
		}
	}
	return n
}

// Returns the number of counted ballots that still rank a standing candidate.
func continuing(election *Election) (n int) {
	for _, ballot := range election.Votes() {
		if !ballot.Counted() {
			continue
		}

		for _, candidate := range ballot.Preferences() {
			if !candidate.IsEliminated() {
				n++
				break
			}
		}
	}
	return n
}

var _ = Describe("Election", func() {

	It("should assign candidate IDs in roster order", func() {
		election := NewElection(nil, DefaultCandidates...)
		candidates := election.Candidates()
		Ω(candidates).Should(HaveLen(4))
		for i, candidate := range candidates {
			Ω(candidate.ID()).Should(Equal(i))
			Ω(candidate.Name()).Should(Equal(DefaultCandidates[i]))
		}
	})

	It("should be idle before counting starts", func() {
		election := fixture("testdata/first_preferences.csv", nil)
		Ω(election.State()).Should(Equal(Idle))
		Ω(election.State().String()).Should(Equal("idle"))
		Ω(election.Round()).Should(BeZero())
		Ω(election.HasStarted()).Should(BeFalse())
		Ω(election.TallyID().String()).Should(Equal("00000000-0000-0000-0000-000000000000"))

		leader, ok := election.Leader()
		Ω(ok).Should(BeFalse())
		Ω(leader).Should(BeNil())
	})

	Describe("ballot submission", func() {

		var election *Election

		BeforeEach(func() {
			election = NewElection(nil, DefaultCandidates...)
		})

		It("should accept partial and complete rankings", func() {
			Ω(election.AddVote([]int{2})).Should(Succeed())
			Ω(election.AddVote([]int{3, 1})).Should(Succeed())
			Ω(election.AddVote([]int{0, 1, 2, 3})).Should(Succeed())

			votes := election.Votes()
			Ω(votes).Should(HaveLen(3))
			Ω(votes[1].Preferences()).Should(Equal([]*Candidate{election.Candidates()[3], election.Candidates()[1]}))
			Ω(votes[1].Counted()).Should(BeFalse())
		})

		It("should reject an empty ballot", func() {
			Ω(election.AddVote([]int{})).Should(MatchError(ErrNoPreferences))
			Ω(election.AddVote(nil)).Should(MatchError(ErrNoPreferences))
			Ω(election.Votes()).Should(BeEmpty())
		})

		It("should reject more preferences than candidates", func() {
			err := election.AddVote([]int{0, 1, 2, 3, 0})
			Ω(errors.Is(err, ErrTooManyPreferences)).Should(BeTrue())
			Ω(election.Votes()).Should(BeEmpty())
		})

		It("should reject unknown candidates", func() {
			for _, ids := range [][]int{{4}, {-1}, {0, 9}} {
				err := election.AddVote(ids)
				Ω(errors.Is(err, ErrUnknownCandidate)).Should(BeTrue())
			}
			Ω(election.Votes()).Should(BeEmpty())
		})

		It("should reject a candidate ranked twice", func() {
			err := election.AddVote([]int{1, 2, 1})
			Ω(errors.Is(err, ErrDuplicateCandidate)).Should(BeTrue())
			Ω(election.Votes()).Should(BeEmpty())
		})

		It("should check the length before the candidates", func() {
			err := election.AddVote([]int{9, 9, 9, 9, 9})
			Ω(errors.Is(err, ErrTooManyPreferences)).Should(BeTrue())
		})

		It("should report the first invalid candidate in order", func() {
			err := election.AddVote([]int{0, 0, 7})
			Ω(errors.Is(err, ErrDuplicateCandidate)).Should(BeTrue())

			err = election.AddVote([]int{7, 0, 0})
			Ω(errors.Is(err, ErrUnknownCandidate)).Should(BeTrue())
		})
	})

	Describe("a first preference majority", func() {

		var election *Election

		BeforeEach(func() {
			election = fixture("testdata/first_preferences.csv", nil)
			Ω(election.StartCounting()).Should(Succeed())
		})

		It("should count the first preferences", func() {
			Ω(counts(election)).Should(Equal([]int{4, 1, 1, 1}))
			Ω(election.Continuing()).Should(Equal(7))
		})

		It("should be decided without any rounds", func() {
			Ω(election.HasStarted()).Should(BeFalse())
			Ω(election.Round()).Should(BeZero())
			Ω(election.State()).Should(Equal(Decided))

			leader, ok := election.Leader()
			Ω(ok).Should(BeTrue())
			Ω(leader.Name()).Should(Equal("Cameron"))
		})

		It("should not redistribute a decided tally", func() {
			Ω(election.Redistribute()).Should(MatchError(ErrNotCounting))
			Ω(counts(election)).Should(Equal([]int{4, 1, 1, 1}))
		})

		It("should allow a decided tally to be counted again", func() {
			tally := election.TallyID()
			Ω(election.StartCounting()).Should(Succeed())
			Ω(counts(election)).Should(Equal([]int{4, 1, 1, 1}))
			Ω(election.TallyID()).ShouldNot(Equal(tally))
		})
	})

	Describe("redistributing the lowest candidates", func() {

		var election *Election

		BeforeEach(func() {
			election = fixture("testdata/redistribute.csv", nil)
			Ω(election.StartCounting()).Should(Succeed())
		})

		It("should start the count without a majority", func() {
			Ω(counts(election)).Should(Equal([]int{4, 3, 2, 1}))
			Ω(election.HasStarted()).Should(BeTrue())
			Ω(election.Round()).Should(Equal(1))
			Ω(election.State()).Should(Equal(Counting))
		})

		It("should not start a count while one is in progress", func() {
			Ω(election.StartCounting()).Should(MatchError(ErrCountInProgress))
			Ω(election.Round()).Should(Equal(1))
		})

		It("should eliminate the lowest candidate each round", func() {
			Ω(election.Redistribute()).Should(Succeed())
			Ω(counts(election)).Should(Equal([]int{4, 3, 2, 0}))
			Ω(election.Candidates()[3].IsEliminated()).Should(BeTrue())
			Ω(election.Continuing()).Should(Equal(9))
			Ω(election.HasStarted()).Should(BeTrue())
			Ω(election.Round()).Should(Equal(2))

			Ω(election.Redistribute()).Should(Succeed())
			Ω(counts(election)).Should(Equal([]int{4, 3, 0, 0}))
			Ω(election.Candidates()[2].IsEliminated()).Should(BeTrue())
			Ω(election.Continuing()).Should(Equal(7))
			Ω(election.HasStarted()).Should(BeFalse())
			Ω(election.Round()).Should(BeZero())
			Ω(election.State()).Should(Equal(Decided))

			leader, ok := election.Leader()
			Ω(ok).Should(BeTrue())
			Ω(leader.Name()).Should(Equal("Cameron"))
		})

		It("should leave ballots added mid-tally out of the count", func() {
			Ω(election.AddVote([]int{3})).Should(Succeed())
			Ω(election.Votes()).Should(HaveLen(11))
			Ω(election.Continuing()).Should(Equal(10))

			Ω(election.Redistribute()).Should(Succeed())
			Ω(election.Continuing()).Should(Equal(9))
			Ω(election.Votes()[10].Counted()).Should(BeFalse())

			Ω(election.Redistribute()).Should(Succeed())
			Ω(election.HasStarted()).Should(BeFalse())

			Ω(election.StartCounting()).Should(Succeed())
			Ω(counts(election)).Should(Equal([]int{4, 3, 2, 2}))
			Ω(election.Continuing()).Should(Equal(11))
		})
	})

	Describe("breaking ties", func() {

		It("should ask the chooser to pick among every tied candidate", func() {
			rng := &scripted{picks: []int{0}}
			election := fixture("testdata/tie.csv", rng)

			winner, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(winner.Name()).Should(Equal("Corbyn"))
			Ω(rng.calls).Should(Equal([]int{4, 1}))

			rounds := election.History().Rounds()
			Ω(rounds).Should(HaveLen(3))
			Ω(rounds[1].Eliminated).Should(Equal(0))
			Ω(rounds[1].Counts).Should(Equal([]int{0, 3, 3, 2}))
			Ω(rounds[2].Eliminated).Should(Equal(3))
			Ω(rounds[2].Counts).Should(Equal([]int{0, 5, 3, 0}))
		})

		It("should eliminate the candidate the chooser picks", func() {
			rng := &scripted{picks: []int{3}}
			election := fixture("testdata/tie.csv", rng)

			winner, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(winner.Name()).Should(Equal("Cameron"))

			rounds := election.History().Rounds()
			Ω(rounds[1].Eliminated).Should(Equal(3))
			Ω(rounds[1].Counts).Should(Equal([]int{3, 3, 2, 0}))
			Ω(rounds[2].Eliminated).Should(Equal(2))
			Ω(rounds[2].Counts).Should(Equal([]int{5, 3, 0, 0}))
		})
	})

	Describe("any tally", func() {

		for _, path := range []string{"testdata/tie.csv", "testdata/mixed.csv", "testdata/redistribute.csv"} {
			path := path

			It("should conserve ballots and terminate for "+path, func() {
				for seed := int64(1); seed <= 25; seed++ {
					election := fixture(path, rand.New(rand.NewSource(seed)))
					Ω(election.StartCounting()).Should(Succeed())
					Ω(election.Continuing()).Should(Equal(len(election.Votes())))

					redistributions := 0
					for election.HasStarted() {
						before := eliminated(election)
						Ω(election.Redistribute()).Should(Succeed())
						redistributions++

						Ω(eliminated(election)).Should(Equal(before + 1))
						Ω(election.Continuing()).Should(Equal(continuing(election)))
						Ω(redistributions).Should(BeNumerically("<=", len(election.Candidates())-1))

						for _, candidate := range election.Candidates() {
							if candidate.IsEliminated() {
								Ω(candidate.Count()).Should(BeZero())
							}
						}
					}

					Ω(election.Round()).Should(BeZero())
					Ω(election.State()).Should(Equal(Decided))
					Ω(election.History().Len()).Should(Equal(redistributions + 1))
				}
			})
		}

		It("should leave exhausted ballots where they are", func() {
			election := fixture("testdata/redistribute.csv", nil)
			_, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())

			exhausted := 0
			for _, ballot := range election.Votes() {
				if ballot.Exhausted() {
					exhausted++
					Ω(ballot.Choice()).Should(Equal(0))
				}
			}
			Ω(exhausted).Should(Equal(3))
		})
	})

	Describe("counting", func() {

		It("should run a complete tally", func() {
			election := fixture("testdata/redistribute.csv", nil)
			winner, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(winner.Name()).Should(Equal("Cameron"))
			Ω(election.History().Len()).Should(Equal(3))
		})

		It("should run a new tally each time it is called", func() {
			election := fixture("testdata/redistribute.csv", nil)
			_, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())
			tally := election.TallyID()

			winner, err := election.Count()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(winner.Name()).Should(Equal("Cameron"))
			Ω(election.TallyID()).ShouldNot(Equal(tally))
			Ω(election.History().Tally()).Should(Equal(election.TallyID()))
			Ω(election.History().Len()).Should(Equal(3))
		})

		It("should end without a winner when there are no ballots", func() {
			election := NewElection(nil, DefaultCandidates...)
			winner, err := election.Count()
			Ω(err).Should(MatchError(ErrNoWinner))
			Ω(winner).Should(BeNil())
			Ω(election.State()).Should(Equal(Exhausted))
			Ω(election.Round()).Should(BeZero())
			Ω(election.Redistribute()).Should(MatchError(ErrNotCounting))
		})

		It("should not redistribute before counting starts", func() {
			election := fixture("testdata/redistribute.csv", nil)
			Ω(election.Redistribute()).Should(MatchError(ErrNotCounting))
			Ω(counts(election)).Should(Equal([]int{0, 0, 0, 0}))
		})
	})

})
