package altvote

// NewBallot creates a ballot ranking the given candidates in order. The
// preferences are not validated here, see Election.AddVote.
func NewBallot(prefs ...*Candidate) *Ballot {
	preferences := make([]*Candidate, len(prefs))
	copy(preferences, prefs)
	return &Ballot{preferences: preferences, choice: -1}
}

// Ballot is a single voter's ranked list of candidates. The preferences never
// change once submitted; only the choice index moves, and it only moves
// forward during a tally.
type Ballot struct {
	preferences []*Candidate // candidates in order of preference
	choice      int          // index of the current choice, -1 until counted
}

// Preferences returns a copy of the ranked candidates.
func (b *Ballot) Preferences() []*Candidate {
	prefs := make([]*Candidate, len(b.preferences))
	copy(prefs, b.preferences)
	return prefs
}

// Choice returns the index of the current preference, or -1 if the ballot
// has not been counted in the current tally.
func (b *Ballot) Choice() int {
	return b.choice
}

// Counted returns true once StartCount has been called on the ballot.
func (b *Ballot) Counted() bool {
	return b.choice >= 0
}

// Current returns the candidate the ballot is counting toward, or nil if the
// ballot is exhausted or has not been counted.
func (b *Ballot) Current() *Candidate {
	if !b.Counted() {
		return nil
	}

	for _, candidate := range b.preferences[b.choice:] {
		if !candidate.IsEliminated() {
			return candidate
		}
	}
	return nil
}

// Exhausted returns true if the ballot was counted and every remaining
// preference has been eliminated.
func (b *Ballot) Exhausted() bool {
	return b.Counted() && b.Current() == nil
}

// StartCount counts the first preference. Eliminations are expected to have
// been reset before a fresh count.
func (b *Ballot) StartCount() {
	b.choice = 0
	b.preferences[0].IncrementCount()
}

// Redistribute moves the ballot past eliminated preferences and counts it
// for the next surviving one. Nothing changes if the current preference is
// still standing, so calls without an intervening elimination are no-ops.
// A ballot whose remaining preferences are all eliminated stays exhausted.
func (b *Ballot) Redistribute() {
	if !b.Counted() {
		return
	}

	last := len(b.preferences) - 1
	advanced := false
	for b.preferences[b.choice].IsEliminated() && b.choice < last {
		b.choice++
		advanced = true
	}

	if advanced && !b.preferences[b.choice].IsEliminated() {
		b.preferences[b.choice].IncrementCount()
	}
}
