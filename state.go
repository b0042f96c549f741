package altvote

// Election states, computed from the tally rather than stored
const (
	Idle      State = iota // no tally has been run since the election was created
	Counting               // a tally is in progress without a majority
	Decided                // a candidate holds a strict majority of continuing ballots
	Exhausted              // the tally ended with no continuing ballots
)

// Names of the states for serialization
var stateStrings = [...]string{
	"idle", "counting", "decided", "exhausted",
}

//===========================================================================
// State Enumeration
//===========================================================================

// State is an enumeration of the possible status of an election.
type State uint8

// String returns a human readable representation of the state.
func (s State) String() string {
	return stateStrings[s]
}

// State returns the current status of the election. Counting corresponds
// exactly to HasStarted; the other states distinguish why it is false.
func (e *Election) State() State {
	switch {
	case !e.tallied:
		return Idle
	case e.HasStarted():
		return Counting
	case e.Continuing() < 1:
		return Exhausted
	default:
		return Decided
	}
}
