package altvote

import (
	"time"

	"github.com/google/uuid"
)

// Round is the state of the tally after one counting step. The first round
// of a tally records the first preference count and eliminates no one.
type Round struct {
	Stage      int       `json:"stage"`      // one-based position in the tally
	Counts     []int     `json:"counts"`     // count per candidate ID, zero if eliminated
	Eliminated int       `json:"eliminated"` // ID of the candidate eliminated in this step, -1 if none
	Held       int       `json:"held"`       // count the eliminated candidate held when eliminated
	Continuing int       `json:"continuing"` // ballots counting toward a standing candidate
	Exhausted  int       `json:"exhausted"`  // counted ballots with no standing preference
	Timestamp  time.Time `json:"timestamp"`  // when the step completed
}

// NewHistory creates an empty history with no tally.
func NewHistory() *History {
	return &History{
		rounds:  make([]*Round, 0),
		created: time.Now(),
		updated: time.Now(),
	}
}

// History is the append-only sequence of rounds of a single tally. It is
// reset when a new tally starts, and like the election it belongs to it is
// not thread-safe.
type History struct {
	tally   uuid.UUID // the tally the rounds belong to
	rounds  []*Round  // in-memory array of rounds in stage order
	created time.Time // timestamp the tally was started
	updated time.Time // timestamp of the last round
}

// Tally returns the identifier of the tally being recorded.
func (h *History) Tally() uuid.UUID {
	return h.tally
}

// Len returns the number of rounds recorded.
func (h *History) Len() int {
	return len(h.rounds)
}

// Rounds returns a copy of the recorded rounds in stage order.
func (h *History) Rounds() []*Round {
	rounds := make([]*Round, len(h.rounds))
	copy(rounds, h.rounds)
	return rounds
}

// Last returns the most recent round or nil if nothing has been counted.
func (h *History) Last() *Round {
	if len(h.rounds) == 0 {
		return nil
	}
	return h.rounds[len(h.rounds)-1]
}

// Created returns the time the current tally was started.
func (h *History) Created() time.Time {
	return h.created
}

// Updated returns the time the last round was recorded.
func (h *History) Updated() time.Time {
	return h.updated
}

func (h *History) reset(tally uuid.UUID) {
	h.tally = tally
	h.rounds = make([]*Round, 0)
	h.created = time.Now()
	h.updated = h.created
}

func (h *History) append(round *Round) {
	round.Stage = len(h.rounds) + 1
	h.rounds = append(h.rounds, round)
	h.updated = round.Timestamp
}

// Creates a round from the current state of the election.
func (e *Election) record(eliminated *Candidate, held int) *Round {
	round := &Round{
		Counts:     make([]int, len(e.candidates)),
		Eliminated: -1,
		Held:       held,
		Continuing: e.Continuing(),
		Timestamp:  time.Now(),
	}

	if eliminated != nil {
		round.Eliminated = eliminated.ID()
	}

	for i, candidate := range e.candidates {
		round.Counts[i] = candidate.Count()
	}

	for _, ballot := range e.votes {
		if ballot.Exhausted() {
			round.Exhausted++
		}
	}
	return round
}
