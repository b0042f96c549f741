package altvote

import "sync"

//===========================================================================
// Blocking Election
//===========================================================================

// NewLocker wraps an election so that every call holds a single mutex for
// its duration, for hosts that drive one election from many go routines.
// Callbacks are dispatched while the lock is held, so they must not call
// back into the Locker.
func NewLocker(election *Election) *Locker {
	return &Locker{election: election}
}

// Locker serializes access to an election. Elections themselves are not
// thread-safe and are usually driven from one go routine; the locker allows
// a user interface and a background loader to share one.
type Locker struct {
	sync.Mutex
	election *Election
}

// AddVote adds a ballot under the lock.
func (l *Locker) AddVote(preferenceIDs []int) error {
	l.Lock()
	defer l.Unlock()
	return l.election.AddVote(preferenceIDs)
}

// StartCounting starts a new tally under the lock.
func (l *Locker) StartCounting() error {
	l.Lock()
	defer l.Unlock()
	return l.election.StartCounting()
}

// Redistribute runs the next round under the lock.
func (l *Locker) Redistribute() error {
	l.Lock()
	defer l.Unlock()
	return l.election.Redistribute()
}

// Count runs a complete tally under the lock.
func (l *Locker) Count() (*Candidate, error) {
	l.Lock()
	defer l.Unlock()
	return l.election.Count()
}

// HasStarted reports if a tally is undecided under the lock.
func (l *Locker) HasStarted() bool {
	l.Lock()
	defer l.Unlock()
	return l.election.HasStarted()
}

// Round returns the current round under the lock.
func (l *Locker) Round() int {
	l.Lock()
	defer l.Unlock()
	return l.election.Round()
}

// Register a callback under the lock.
func (l *Locker) Register(callback Callback) {
	l.Lock()
	defer l.Unlock()
	l.election.Register(callback)
}

// Do calls fn with the election while holding the lock, for reads that need
// a consistent view of several values, e.g. candidate counts and the round.
func (l *Locker) Do(fn func(*Election) error) error {
	l.Lock()
	defer l.Unlock()
	return fn(l.election)
}
