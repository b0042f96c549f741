package altvote

// Event types dispatched by an election
const (
	UnknownEvent EventType = iota
	VoteAddedEvent
	CountStartedEvent
	RedistributedEvent
	TallyCompleteEvent
)

// Names of event types
var eventTypeStrings = [...]string{
	"unknown", "voteAdded", "countStarted", "redistributed", "tallyComplete",
}

//===========================================================================
// Event Types
//===========================================================================

// EventType is an enumeration of the kind of events that can occur.
type EventType uint16

// String returns the name of event types
func (t EventType) String() string {
	if int(t) >= len(eventTypeStrings) {
		return eventTypeStrings[UnknownEvent]
	}
	return eventTypeStrings[t]
}

// Callback is a function that can receive events.
type Callback func(Event) error

//===========================================================================
// Event Definition and Methods
//===========================================================================

// Event represents a change to the election. Listeners register callbacks
// with the election and are called synchronously after every change so that
// views can re-render from the current state.
type Event interface {
	Type() EventType
	Source() interface{}
	Value() interface{}
}

// event is an internal implementation of the Event interface.
type event struct {
	etype  EventType
	source interface{}
	value  interface{}
}

// Type returns the event type.
func (e *event) Type() EventType {
	return e.etype
}

// Source returns the election that dispatched the event.
func (e *event) Source() interface{} {
	return e.source
}

// Value returns the value associated with the event: the added ballot, the
// current round, the eliminated candidate, or the winner (nil if none).
func (e *event) Value() interface{} {
	return e.value
}
