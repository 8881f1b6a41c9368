package crawl

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/jobs"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) Discover(ctx context.Context, page int) ([]string, int) {
	args := m.Called(ctx, page)
	ids, _ := args.Get(0).([]string)
	return ids, args.Int(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Fetch(ctx context.Context, jobID string) (jobs.JobRecord, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(jobs.JobRecord), args.Error(1)
}

// fakeStore records every Save call so tests can assert the incremental
// persistence contract.
type fakeStore struct {
	initial []jobs.JobRecord
	saves   [][]jobs.JobRecord
	saveErr error
}

func (s *fakeStore) Load() []jobs.JobRecord { return s.initial }

func (s *fakeStore) Save(records []jobs.JobRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	snapshot := make([]jobs.JobRecord, len(records))
	copy(snapshot, records)
	s.saves = append(s.saves, snapshot)
	return nil
}

func (s *fakeStore) last() []jobs.JobRecord {
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

func recordFor(id string) jobs.JobRecord {
	r := jobs.NewJobRecord(id)
	r.BasicInfo.Title = "Title " + id
	return r
}

func newOrchestrator(l jobs.Lister, e jobs.Extractor, st jobs.RecordStore, nav jobs.Navigator, cfg Config) *Orchestrator {
	return New(l, e, st, nav, cfg, zap.NewNop())
}

func TestRunSavesAfterEveryNewRecord(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	lister.On("Discover", mock.Anything, 1).Return([]string{"a", "b"}, 1)
	extractor.On("Fetch", mock.Anything, "a").Return(recordFor("a"), nil)
	extractor.On("Fetch", mock.Anything, "b").Return(recordFor("b"), nil)

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	require.NoError(t, o.Run(context.Background()))

	// One save per record plus the final save.
	require.Len(t, st.saves, 3)
	require.Len(t, st.saves[0], 1)
	require.Len(t, st.saves[1], 2)
	require.Equal(t, st.saves[1], st.last())

	lister.AssertExpectations(t)
	extractor.AssertExpectations(t)
}

func TestRunSkipsAlreadyScrapedIDs(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{initial: []jobs.JobRecord{recordFor("a")}}

	lister.On("Discover", mock.Anything, 1).Return([]string{"a", "b"}, 1)
	extractor.On("Fetch", mock.Anything, "b").Return(recordFor("b"), nil)

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	require.NoError(t, o.Run(context.Background()))

	extractor.AssertNotCalled(t, "Fetch", mock.Anything, "a")
	require.Len(t, st.last(), 2)
}

func TestRunFetchFailureLeavesIDEligible(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	lister.On("Discover", mock.Anything, 1).Return([]string{"bad", "good"}, 1)
	extractor.On("Fetch", mock.Anything, "bad").
		Return(jobs.JobRecord{}, &jobs.FetchError{JobID: "bad", StatusCode: 403, Err: errors.New("forbidden")})
	extractor.On("Fetch", mock.Anything, "good").Return(recordFor("good"), nil)

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	require.NoError(t, o.Run(context.Background()))

	final := st.last()
	require.Len(t, final, 1)
	require.Equal(t, "good", final[0].JobID)
}

func TestRunDuplicateIDsOnOnePageStoredOnce(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	// The same job can be placed twice on a page, e.g. sponsored and organic.
	lister.On("Discover", mock.Anything, 1).Return([]string{"a", "a", "b"}, 1)
	extractor.On("Fetch", mock.Anything, "a").Return(recordFor("a"), nil)
	extractor.On("Fetch", mock.Anything, "b").Return(recordFor("b"), nil)

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	require.NoError(t, o.Run(context.Background()))

	extractor.AssertNumberOfCalls(t, "Fetch", 2)

	final := st.last()
	require.Len(t, final, 2)
	ids := map[string]int{}
	for _, r := range final {
		ids[r.JobID]++
	}
	require.Equal(t, map[string]int{"a": 1, "b": 1}, ids)
}

func TestRunNavigationRejectsOutOfRangeThenAccepts(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	lister.On("Discover", mock.Anything, 1).Return([]string{"a"}, 2)
	lister.On("Discover", mock.Anything, 2).Return([]string{"b"}, 2)
	extractor.On("Fetch", mock.Anything, "a").Return(recordFor("a"), nil)
	extractor.On("Fetch", mock.Anything, "b").Return(recordFor("b"), nil)

	nav := NewScriptedNavigator(
		jobs.Decision{Action: jobs.ActionGoto, Page: 9}, // out of range, rejected
		jobs.Decision{Action: jobs.ActionPrev},          // already on page 1, rejected
		jobs.Decision{Action: jobs.ActionNext},
	)
	o := newOrchestrator(lister, extractor, st, nav, Config{})
	require.NoError(t, o.Run(context.Background()))

	lister.AssertCalled(t, "Discover", mock.Anything, 2)
	require.Len(t, st.last(), 2)
}

func TestRunQuitStopsBeforeNextPage(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	lister.On("Discover", mock.Anything, 1).Return([]string{"a"}, 3)
	extractor.On("Fetch", mock.Anything, "a").Return(recordFor("a"), nil)

	nav := NewScriptedNavigator(jobs.Decision{Action: jobs.ActionQuit})
	o := newOrchestrator(lister, extractor, st, nav, Config{})
	require.NoError(t, o.Run(context.Background()))

	lister.AssertNumberOfCalls(t, "Discover", 1)
	require.Len(t, st.last(), 1)
}

func TestRunStopsWhenLastPageReached(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	lister.On("Discover", mock.Anything, 2).Return([]string{"c"}, 2)
	extractor.On("Fetch", mock.Anything, "c").Return(recordFor("c"), nil)

	// Starting on the last page means no navigation prompt at all.
	nav := NewScriptedNavigator(jobs.Decision{Action: jobs.ActionNext})
	o := newOrchestrator(lister, extractor, st, nav, Config{StartPage: 2})
	require.NoError(t, o.Run(context.Background()))

	lister.AssertNumberOfCalls(t, "Discover", 1)
	require.Equal(t, 0, nav.next)
}

func TestRunSaveErrorAborts(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{saveErr: errors.New("disk full")}

	lister.On("Discover", mock.Anything, 1).Return([]string{"a"}, 1)
	extractor.On("Fetch", mock.Anything, "a").Return(recordFor("a"), nil)

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	err := o.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, st.saveErr)
}

func TestRunSaveErrorDrainsInFlightFetches(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{saveErr: errors.New("disk full")}

	ids := []string{"a", "b", "c", "d"}
	lister.On("Discover", mock.Anything, 1).Return(ids, 1)
	for _, id := range ids {
		extractor.On("Fetch", mock.Anything, id).Return(recordFor(id), nil)
	}

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{Concurrency: 2})
	err := o.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, st.saveErr)

	// Every queued fetch completes: the workers are never left blocked on an
	// undelivered result after the save failure.
	extractor.AssertNumberOfCalls(t, "Fetch", len(ids))
}

func TestRunConcurrentFetchesCollectEveryRecord(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{}

	ids := []string{"a", "b", "c", "d", "e"}
	lister.On("Discover", mock.Anything, 1).Return(ids, 1)
	for _, id := range ids {
		extractor.On("Fetch", mock.Anything, id).Return(recordFor(id), nil)
	}

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{Concurrency: 3})
	require.NoError(t, o.Run(context.Background()))

	final := st.last()
	require.Len(t, final, len(ids))
	got := make([]string, len(final))
	for i, r := range final {
		got[i] = r.JobID
	}
	sort.Strings(got)
	require.Equal(t, ids, got)
}

func TestRunCanceledContextStillWritesFinalSave(t *testing.T) {
	lister := &mockLister{}
	extractor := &mockExtractor{}
	st := &fakeStore{initial: []jobs.JobRecord{recordFor("a")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(lister, extractor, st, NewScriptedNavigator(), Config{})
	require.NoError(t, o.Run(ctx))

	lister.AssertNotCalled(t, "Discover", mock.Anything, mock.Anything)
	require.Len(t, st.saves, 1)
	require.Len(t, st.last(), 1)
}
