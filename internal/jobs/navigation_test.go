package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Decision
		wantErr bool
	}{
		{name: "next", input: "n", want: Decision{Action: ActionNext}},
		{name: "next uppercase", input: "N", want: Decision{Action: ActionNext}},
		{name: "prev", input: "p", want: Decision{Action: ActionPrev}},
		{name: "quit", input: "q", want: Decision{Action: ActionQuit}},
		{name: "page number", input: "7", want: Decision{Action: ActionGoto, Page: 7}},
		{name: "padded page number", input: "  3\n", want: Decision{Action: ActionGoto, Page: 3}},
		{name: "garbage", input: "next please", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFetchErrorMessage(t *testing.T) {
	withStatus := &FetchError{JobID: "job-1", StatusCode: 404}
	require.Contains(t, withStatus.Error(), "job-1")
	require.Contains(t, withStatus.Error(), "404")

	wrapped := &FetchError{JobID: "job-2", Err: context.DeadlineExceeded}
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
}
