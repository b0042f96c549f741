package altvote

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bbengfort/x/stats"
)

// Metrics tracks the measurable statistics of the tallies run by an election
// it is registered with, e.g. how many ballots were moved in each round and
// how many were exhausted. Register Metrics.Handle as an election callback.
type Metrics struct {
	sync.RWMutex
	started         time.Time         // The time the first tally was started
	finished        time.Time         // The time the last tally completed
	tally           string            // The identifier of the last tally
	submissions     uint64            // Ballots added while registered
	ballots         uint64            // Ballots counted in the last tally
	tallies         uint64            // The number of tallies started
	redistributions uint64            // The number of eliminations
	decided         uint64            // Tallies that ended with a majority
	exhausted       uint64            // Tallies that ended without continuing ballots
	transfers       *stats.Statistics // Ballots held by each eliminated candidate
	exhaustion      *stats.Statistics // Exhausted ballots after each redistribution
}

// NewMetrics creates the metrics data store
func NewMetrics() *Metrics {
	return &Metrics{
		transfers:  new(stats.Statistics),
		exhaustion: new(stats.Statistics),
	}
}

// Handle an election event, implements Callback.
func (m *Metrics) Handle(e Event) error {
	election, ok := e.Source().(*Election)
	if !ok {
		return ErrEventSourceError
	}

	m.Lock()
	defer m.Unlock()

	switch e.Type() {
	case VoteAddedEvent:
		m.submissions++
	case CountStartedEvent:
		m.tallies++
		m.tally = election.TallyID().String()
		m.ballots = uint64(len(election.Votes()))
		if m.started.IsZero() {
			m.started = time.Now()
		}
	case RedistributedEvent:
		round := election.History().Last()
		if round == nil {
			return ErrEventTypeError
		}
		m.redistributions++
		m.transfers.Update(float64(round.Held))
		m.exhaustion.Update(float64(round.Exhausted))
	case TallyCompleteEvent:
		if e.Value() == nil {
			m.exhausted++
		} else if _, ok := e.Value().(*Candidate); ok {
			m.decided++
		} else {
			return ErrEventTypeError
		}
		m.finished = time.Now()
	default:
		return fmt.Errorf("no metrics handler for event %s", e.Type())
	}
	return nil
}

// Tallies returns the number of tallies started and how many were decided.
func (m *Metrics) Tallies() (started, decided uint64) {
	m.RLock()
	defer m.RUnlock()
	return m.tallies, m.decided
}

// Redistributions returns the number of candidates eliminated across tallies.
func (m *Metrics) Redistributions() uint64 {
	m.RLock()
	defer m.RUnlock()
	return m.redistributions
}

// Dump the metrics to JSON
func (m *Metrics) Dump(path string, extra map[string]interface{}) (err error) {
	m.RLock()
	defer m.RUnlock()

	data := make(map[string]interface{})

	// Append extra information
	for key, val := range extra {
		data[key] = val
	}

	data["metric"] = "tally"
	data["version"] = PackageVersion
	data["tally"] = m.tally
	data["started"] = m.started.Format(time.RFC3339Nano)
	data["finished"] = m.finished.Format(time.RFC3339Nano)
	data["submissions"] = m.submissions
	data["ballots"] = m.ballots
	data["tallies"] = m.tallies
	data["redistributions"] = m.redistributions
	data["decided"] = m.decided
	data["exhausted"] = m.exhausted
	data["duration"] = m.duration().String()
	data["transfers"] = m.transfers.Serialize()
	data["exhaustion"] = m.exhaustion.Serialize()

	return appendJSON(path, data)
}

// String returns a summary of the tally metrics
func (m *Metrics) String() string {
	m.RLock()
	defer m.RUnlock()

	return fmt.Sprintf(
		"%d tallies (%d decided), %d redistributions of %d ballots in %s",
		m.tallies, m.decided, m.redistributions, m.ballots, m.duration(),
	)
}

// Duration computes the amount of time between the first and last tally.
func (m *Metrics) duration() time.Duration {
	if m.finished.Before(m.started) {
		return 0
	}
	return m.finished.Sub(m.started)
}

// Appends the data as a single line of JSON to the file at path.
func appendJSON(path string, data map[string]interface{}) (err error) {
	var f *os.File
	if f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
		return err
	}
	defer f.Close()

	var row []byte
	if row, err = json.Marshal(data); err != nil {
		return err
	}

	if _, err = f.Write(append(row, '\n')); err != nil {
		return err
	}
	return nil
}
