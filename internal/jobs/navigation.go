package jobs

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is the kind of navigation requested between listing pages.
type Action int

// Navigation actions understood by the orchestrator.
const (
	ActionNext Action = iota
	ActionPrev
	ActionGoto
	ActionQuit
)

// Decision is one navigation request. Page is only meaningful for ActionGoto.
type Decision struct {
	Action Action
	Page   int
}

// ParseDecision interprets raw navigation input: "n" for next, "p" for
// previous, "q" to quit, or a page number. Anything else is an error and
// should be re-requested.
func ParseDecision(input string) (Decision, error) {
	switch s := strings.ToLower(strings.TrimSpace(input)); s {
	case "n":
		return Decision{Action: ActionNext}, nil
	case "p":
		return Decision{Action: ActionPrev}, nil
	case "q":
		return Decision{Action: ActionQuit}, nil
	default:
		page, err := strconv.Atoi(s)
		if err != nil {
			return Decision{}, fmt.Errorf("unrecognized navigation input %q", input)
		}
		return Decision{Action: ActionGoto, Page: page}, nil
	}
}
