package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bbengfort/altvote"
	"github.com/dustin/go-humanize"
)

// reporter renders the rounds of a tally as the election dispatches them.
type reporter struct {
	out io.Writer
}

// Handle implements altvote.Callback.
func (r *reporter) Handle(e altvote.Event) error {
	election, ok := e.Source().(*altvote.Election)
	if !ok {
		return altvote.ErrEventSourceError
	}

	switch e.Type() {
	case altvote.CountStartedEvent, altvote.RedistributedEvent:
		return r.round(election)
	case altvote.TallyCompleteEvent:
		return r.result(election, e.Value())
	}
	return nil
}

func (r *reporter) round(election *altvote.Election) error {
	round := election.History().Last()
	if round == nil {
		return nil
	}

	candidates := election.Candidates()
	if round.Eliminated < 0 {
		fmt.Fprintf(r.out, "%s count: first preferences\n", humanize.Ordinal(round.Stage))
	} else {
		fmt.Fprintf(r.out, "%s count: %s eliminated, %s ballots transferred\n",
			humanize.Ordinal(round.Stage), candidates[round.Eliminated], humanize.Comma(int64(round.Held)))
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tCANDIDATE\tVOTES\tSHARE\t")
	for _, candidate := range candidates {
		if candidate.IsEliminated() {
			fmt.Fprintf(w, "\t%s\t-\t-\t\n", candidate)
			continue
		}
		fmt.Fprintf(w, "\t%s\t%s\t%s\t\n", candidate, humanize.Comma(int64(candidate.Count())), share(candidate.Count(), round.Continuing))
	}

	if round.Exhausted > 0 {
		fmt.Fprintf(w, "\texhausted\t%s\t\t\n", humanize.Comma(int64(round.Exhausted)))
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *reporter) result(election *altvote.Election, value interface{}) error {
	winner, ok := value.(*altvote.Candidate)
	if !ok || winner == nil {
		_, err := fmt.Fprintf(r.out, "no winner: all %s ballots are exhausted\n", humanize.Comma(int64(len(election.Votes()))))
		return err
	}

	_, err := fmt.Fprintf(r.out, "%s wins with %s of %s continuing ballots after %s\n",
		winner, humanize.Comma(int64(winner.Count())), humanize.Comma(int64(election.Continuing())),
		rounds(election.History().Len()))
	return err
}

func share(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%0.1f%%", 100*float64(count)/float64(total))
}

func rounds(n int) string {
	if n == 1 {
		return "1 round"
	}
	return fmt.Sprintf("%s rounds", humanize.Comma(int64(n)))
}
