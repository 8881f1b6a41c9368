package crawl

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/jobsift/dice-crawler/internal/jobs"
)

// StdinNavigator prompts an interactive operator for the next navigation
// decision. Unparsable input is rejected and re-prompted without returning;
// only a read failure (for example EOF) surfaces as an error.
type StdinNavigator struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdinNavigator reads decisions from in and writes prompts to out.
func NewStdinNavigator(in io.Reader, out io.Writer) *StdinNavigator {
	return &StdinNavigator{in: bufio.NewReader(in), out: out}
}

// Decide blocks until the operator supplies a parsable decision.
func (n *StdinNavigator) Decide(ctx context.Context, current, total int) (jobs.Decision, error) {
	for {
		if err := ctx.Err(); err != nil {
			return jobs.Decision{}, err
		}
		fmt.Fprintf(n.out, "\nCurrent page: %d/%d\nEnter 'n' for next page, 'p' for previous page, a page number, or 'q' to quit: ",
			current, total)
		line, err := n.in.ReadString('\n')
		if err != nil && line == "" {
			return jobs.Decision{}, fmt.Errorf("read navigation input: %w", err)
		}
		decision, perr := jobs.ParseDecision(line)
		if perr != nil {
			fmt.Fprintln(n.out, "Invalid input. Please try again.")
			continue
		}
		return decision, nil
	}
}

// ScriptedNavigator replays a fixed decision sequence, quitting once the
// script is exhausted. It drives unattended and test runs.
type ScriptedNavigator struct {
	decisions []jobs.Decision
	next      int
}

// NewScriptedNavigator builds a navigator over the given sequence.
func NewScriptedNavigator(decisions ...jobs.Decision) *ScriptedNavigator {
	return &ScriptedNavigator{decisions: decisions}
}

// Decide returns the next scripted decision.
func (n *ScriptedNavigator) Decide(_ context.Context, _, _ int) (jobs.Decision, error) {
	if n.next >= len(n.decisions) {
		return jobs.Decision{Action: jobs.ActionQuit}, nil
	}
	d := n.decisions[n.next]
	n.next++
	return d, nil
}
