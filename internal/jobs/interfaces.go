package jobs

import "context"

// Lister discovers job ids on one search-results page. It never fails:
// discovery degrades to an empty id list and a default page count.
type Lister interface {
	Discover(ctx context.Context, page int) (ids []string, totalPages int)
}

// Extractor fetches one detail page and parses it into a record. A record
// with empty groups is still a success; only network or status failures
// return a *FetchError.
type Extractor interface {
	Fetch(ctx context.Context, jobID string) (JobRecord, error)
}

// RecordStore persists the scraped record collection.
type RecordStore interface {
	Load() []JobRecord
	Save(records []JobRecord) error
}

// DelayPolicy pauses before a fetch to stay polite to the source.
// Implementations must return promptly once ctx is canceled.
type DelayPolicy interface {
	Wait(ctx context.Context)
}

// Navigator supplies the page-to-page decision between listing pages, so
// the orchestrator can be driven interactively, by script, or by tests.
type Navigator interface {
	Decide(ctx context.Context, current, total int) (Decision, error)
}
