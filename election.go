package altvote

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Chooser selects a uniformly random index in [0, n) and is used to break
// ties between the lowest scoring candidates; *rand.Rand implements it.
type Chooser interface {
	Intn(n int) int
}

//===========================================================================
// Election Helpers
//===========================================================================

// NewElection creates an election for the named candidates, whose order
// defines their IDs. Ties are broken with rng; if rng is nil a time seeded
// source is used instead.
func NewElection(rng Chooser, names ...string) *Election {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	election := &Election{
		candidates: make([]*Candidate, 0, len(names)),
		votes:      make([]*Ballot, 0),
		history:    NewHistory(),
		rng:        rng,
	}

	for i, name := range names {
		election.candidates = append(election.candidates, NewCandidate(i, name))
	}
	return election
}

// Election owns the candidate roster and the submitted ballots and counts
// them with the alternative vote: the lowest scorer is eliminated each round
// and their ballots move to the next surviving preference until a candidate
// holds a strict majority of continuing ballots.
//
// NOTE: elections are not thread-safe; wrap them in a Locker if they must be
// accessed from multiple go routines.
type Election struct {
	candidates []*Candidate // fixed roster, index is the candidate ID
	votes      []*Ballot    // submitted ballots, append only
	round      int          // current round, 0 when no tally is in progress
	tallied    bool         // true once counting has started at least once
	tally      uuid.UUID    // identifies the current tally in logs and metrics
	history    *History     // rounds of the current tally
	rng        Chooser      // breaks ties between the lowest scorers
	listeners  []Callback   // notified after every change
}

// Register a callback to be notified synchronously after every change.
func (e *Election) Register(callback Callback) {
	e.listeners = append(e.listeners, callback)
}

//===========================================================================
// Ballot Submission
//===========================================================================

// AddVote validates the zero-based candidate IDs in order of preference and
// appends a new ballot. Ballots added while counting is in progress are
// included from the next call to StartCounting.
func (e *Election) AddVote(preferenceIDs []int) error {
	if len(preferenceIDs) > len(e.candidates) {
		return fmt.Errorf("%w: %d preferences for %d candidates", ErrTooManyPreferences, len(preferenceIDs), len(e.candidates))
	}

	if len(preferenceIDs) < 1 {
		return ErrNoPreferences
	}

	preferences := make([]*Candidate, 0, len(preferenceIDs))
	selected := make(map[int]struct{}, len(preferenceIDs))
	for _, id := range preferenceIDs {
		if id < 0 || id >= len(e.candidates) {
			return fmt.Errorf("%w: id %d", ErrUnknownCandidate, id)
		}

		if _, ok := selected[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCandidate, e.candidates[id])
		}

		selected[id] = struct{}{}
		preferences = append(preferences, e.candidates[id])
	}

	ballot := NewBallot(preferences...)
	e.votes = append(e.votes, ballot)
	return e.notify(VoteAddedEvent, ballot)
}

//===========================================================================
// Counting
//===========================================================================

// StartCounting resets every candidate and counts the first preference of
// every ballot. The round is 1 if no candidate holds a majority afterward,
// otherwise the tally is already decided and the round stays 0.
func (e *Election) StartCounting() error {
	if e.HasStarted() || e.round != 0 {
		return ErrCountInProgress
	}

	for _, candidate := range e.candidates {
		candidate.ResetElimination()
		candidate.ResetCount()
	}

	for _, ballot := range e.votes {
		ballot.StartCount()
	}

	e.tallied = true
	e.tally = uuid.New()
	e.history.reset(e.tally)
	e.history.append(e.record(nil, 0))

	if e.HasStarted() {
		e.round = 1
	} else {
		e.round = 0
	}

	log.Debug().Str("tally", e.tally.String()).Int("ballots", len(e.votes)).Int("round", e.round).Msg("counting started")
	return e.notify(CountStartedEvent, e.round)
}

// Redistribute eliminates one of the lowest scoring candidates, chosen at
// random among ties, and moves each affected ballot to its next surviving
// preference. The round resets to 0 once the tally is decided, every ballot
// is exhausted, or every round has been used.
func (e *Election) Redistribute() error {
	if !e.HasStarted() {
		return ErrNotCounting
	}

	eliminated, held, err := e.eliminateLowest()
	if err != nil {
		return err
	}

	for _, ballot := range e.votes {
		ballot.Redistribute()
	}

	if !e.HasStarted() || e.Continuing() == 0 || e.round >= len(e.candidates)-1 {
		e.round = 0
	} else {
		e.round++
	}

	e.history.append(e.record(eliminated, held))
	return e.notify(RedistributedEvent, eliminated)
}

// Count runs a complete tally, starting the count and redistributing until
// the tally is over. It returns the candidate with a majority or
// ErrNoWinner if every ballot was exhausted.
func (e *Election) Count() (*Candidate, error) {
	if err := e.StartCounting(); err != nil {
		return nil, err
	}

	for e.HasStarted() {
		if err := e.Redistribute(); err != nil {
			return nil, err
		}
	}

	if winner, ok := e.Leader(); ok {
		return winner, nil
	}
	return nil, ErrNoWinner
}

// Finds the lowest scoring standing candidates and eliminates one of them,
// returning it along with the count it held when it was eliminated.
// Eliminated candidates read as a count of zero for the rest of the tally.
func (e *Election) eliminateLowest() (*Candidate, int, error) {
	lowest := make([]*Candidate, 0, len(e.candidates))
	for _, candidate := range e.candidates {
		if candidate.IsEliminated() {
			continue
		}

		switch {
		case len(lowest) == 0 || candidate.Count() < lowest[0].Count():
			lowest = append(lowest[:0], candidate)
		case candidate.Count() == lowest[0].Count():
			lowest = append(lowest, candidate)
		}
	}

	if len(lowest) == 0 {
		return nil, 0, nil
	}

	loser := lowest[e.rng.Intn(len(lowest))]
	held := loser.Count()
	if err := loser.Eliminate(); err != nil {
		return nil, 0, err
	}
	loser.ResetCount()

	log.Debug().
		Str("tally", e.tally.String()).
		Int("round", e.round).
		Str("candidate", loser.Name()).
		Int("held", held).
		Int("ties", len(lowest)).
		Msg("candidate eliminated")
	return loser, held, nil
}

//===========================================================================
// Tally State
//===========================================================================

// HasStarted returns true while the tally is undecided: there is at least one
// continuing ballot and no candidate holds a strict majority of them.
func (e *Election) HasStarted() bool {
	total, highest := e.totals()
	return !(total < 1 || highest*2 > total)
}

// Leader returns the candidate holding a strict majority of the continuing
// ballots, if there is one.
func (e *Election) Leader() (*Candidate, bool) {
	total, highest := e.totals()
	if total < 1 || highest*2 <= total {
		return nil, false
	}

	for _, candidate := range e.candidates {
		if !candidate.IsEliminated() && candidate.Count() == highest {
			return candidate, true
		}
	}
	return nil, false
}

// Continuing returns the number of ballots counting toward a standing
// candidate.
func (e *Election) Continuing() int {
	total, _ := e.totals()
	return total
}

// Sums the counts of standing candidates and finds the highest count.
func (e *Election) totals() (total, highest int) {
	for _, candidate := range e.candidates {
		if candidate.IsEliminated() {
			continue
		}

		count := candidate.Count()
		total += count
		if count > highest {
			highest = count
		}
	}
	return total, highest
}

// Round returns the current round, 0 when no tally is in progress.
func (e *Election) Round() int {
	return e.round
}

// Candidates returns the roster in ID order.
func (e *Election) Candidates() []*Candidate {
	candidates := make([]*Candidate, len(e.candidates))
	copy(candidates, e.candidates)
	return candidates
}

// Votes returns the submitted ballots in order of submission.
func (e *Election) Votes() []*Ballot {
	votes := make([]*Ballot, len(e.votes))
	copy(votes, e.votes)
	return votes
}

// History returns the rounds of the current tally.
func (e *Election) History() *History {
	return e.history
}

// TallyID returns the identifier of the current tally, the zero UUID if
// counting has never started.
func (e *Election) TallyID() uuid.UUID {
	return e.tally
}

//===========================================================================
// Notifications
//===========================================================================

// Dispatches the event to all listeners, followed by a completion event if
// the change ended the tally. Listener errors do not undo the change.
func (e *Election) notify(etype EventType, value interface{}) error {
	errs := e.dispatch(etype, value)

	if etype != VoteAddedEvent && e.round == 0 {
		winner, ok := e.Leader()
		if ok {
			log.Info().Str("tally", e.tally.String()).Str("winner", winner.Name()).Int("votes", winner.Count()).Int("continuing", e.Continuing()).Msg("tally decided")
			errs = append(errs, e.dispatch(TallyCompleteEvent, winner)...)
		} else {
			log.Info().Str("tally", e.tally.String()).Int("exhausted", e.history.Last().Exhausted).Msg("tally ended without continuing ballots")
			errs = append(errs, e.dispatch(TallyCompleteEvent, nil)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCallback, errors.Join(errs...))
	}
	return nil
}

func (e *Election) dispatch(etype EventType, value interface{}) []error {
	var errs []error
	evt := &event{etype: etype, source: e, value: value}
	for _, callback := range e.listeners {
		if err := callback(evt); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", etype, err))
		}
	}
	return errs
}
