package altvote

// NewCandidate creates a candidate with the given roster position and name.
func NewCandidate(id int, name string) *Candidate {
	return &Candidate{id: id, name: name}
}

// Candidate is a named contestant in the election. Candidates are owned by
// the Election and shared by reference with every ballot that ranks them, so
// counts and eliminations are visible through a single source of truth.
type Candidate struct {
	id         int    // position in the election roster
	name       string // display name of the candidate
	count      int    // ballots currently counting toward the candidate
	eliminated bool   // set once per tally, cleared by a fresh count
}

// ID returns the position of the candidate in the roster.
func (c *Candidate) ID() int {
	return c.id
}

// Name returns the name of the candidate.
func (c *Candidate) Name() string {
	return c.name
}

// Count returns the number of ballots currently counting for the candidate.
func (c *Candidate) Count() int {
	return c.count
}

// IsEliminated returns true if the candidate has been eliminated.
func (c *Candidate) IsEliminated() bool {
	return c.eliminated
}

// ResetElimination clears the eliminated flag.
func (c *Candidate) ResetElimination() {
	c.eliminated = false
}

// ResetCount sets the count back to zero.
func (c *Candidate) ResetCount() {
	c.count = 0
}

// IncrementCount adds a single ballot to the count.
func (c *Candidate) IncrementCount() {
	c.count++
}

// Eliminate marks the candidate as eliminated. The count is left alone, the
// election decides what an eliminated candidate's count should read.
func (c *Candidate) Eliminate() error {
	if c.eliminated {
		return ErrAlreadyEliminated
	}
	c.eliminated = true
	return nil
}

// String returns the candidate name.
func (c *Candidate) String() string {
	return c.name
}
