package altvote_test

import (
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/bbengfort/altvote"
)

var _ = Describe("Locker", func() {

	It("should serialize ballots added from many go routines", func() {
		election := NewElection(nil, DefaultCandidates...)
		locker := NewLocker(election)

		metrics := NewMetrics()
		locker.Register(metrics.Handle)

		group := new(sync.WaitGroup)
		for i := 0; i < 10; i++ {
			group.Add(1)
			go func(first int) {
				defer GinkgoRecover()
				defer group.Done()
				for j := 0; j < 10; j++ {
					Ω(locker.AddVote([]int{first % 4, (first + 1) % 4})).Should(Succeed())
				}
			}(i)
		}

		// read while the ballots are being added
		go func() {
			defer GinkgoRecover()
			for i := 0; i < 10; i++ {
				locker.HasStarted()
			}
		}()

		group.Wait()
		err := locker.Do(func(e *Election) error {
			Ω(e.Votes()).Should(HaveLen(100))
			return nil
		})
		Ω(err).ShouldNot(HaveOccurred())

		winner, err := locker.Count()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(winner).ShouldNot(BeNil())
		Ω(locker.HasStarted()).Should(BeFalse())
		Ω(locker.Round()).Should(BeZero())
	})

	It("should step through a tally", func() {
		election := fixture("testdata/redistribute.csv", nil)
		locker := NewLocker(election)

		Ω(locker.StartCounting()).Should(Succeed())
		Ω(locker.Round()).Should(Equal(1))
		for locker.HasStarted() {
			Ω(locker.Redistribute()).Should(Succeed())
		}

		Ω(locker.Redistribute()).Should(MatchError(ErrNotCounting))
		Ω(locker.Do(func(e *Election) error {
			Ω(e.State()).Should(Equal(Decided))
			return nil
		})).Should(Succeed())
	})

})
