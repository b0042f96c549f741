package altvote

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParsePreferences converts the fields of a single ballot line into candidate
// IDs. An empty field means no further preference and must not be followed
// by a non-empty field. Range and duplicate checks are left to AddVote.
func ParsePreferences(fields []string) ([]int, error) {
	ids := make([]int, 0, len(fields))
	blank := false

	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			blank = true
			continue
		}

		if blank {
			return nil, fmt.Errorf("%w: preference %d", ErrGapAfterBlankPreference, i+1)
		}

		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPreference, field)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// LoadVotes adds a ballot for every line of the file at path. See ReadVotes.
func (e *Election) LoadVotes(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return e.readVotes(f, path)
}

// ReadVotes adds a ballot for every line of comma separated candidate IDs
// read from r and returns the number of ballots added. Blank lines are
// skipped. Each line is added or rejected on its own; every rejected line is
// reported as a *LineError in the joined error that is returned once the
// reader is exhausted. Errors reading from r stop the load immediately.
func (e *Election) ReadVotes(r io.Reader) (int, error) {
	return e.readVotes(r, "")
}

func (e *Election) readVotes(r io.Reader, path string) (added int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var errs []error
	for {
		var record []string
		if record, err = reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, &LineError{Path: path, Line: perr.StartLine, Err: fmt.Errorf("%w: %s", ErrMalformedPreference, perr.Err)})
				continue
			}

			return added, err
		}

		line, _ := reader.FieldPos(0)

		var ids []int
		if ids, err = ParsePreferences(record); err != nil {
			errs = append(errs, &LineError{Path: path, Line: line, Err: err})
			continue
		}

		if err = e.AddVote(ids); err != nil {
			errs = append(errs, &LineError{Path: path, Line: line, Err: err})
			// the ballot was added, only a listener failed
			if errors.Is(err, ErrCallback) {
				added++
			}
			continue
		}
		added++
	}

	return added, errors.Join(errs...)
}
