// Package jobs defines core types shared across the scraper subsystems.
package jobs

import "fmt"

// BasicInfo holds the headline fields of a posting. Any field may be empty
// when the page did not expose it.
type BasicInfo struct {
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Location    string `json:"location,omitempty"`
	PostedDate  string `json:"posted_date,omitempty"`
}

// Overview holds the classified chip values from a posting's overview block.
type Overview struct {
	Salary         string `json:"salary,omitempty"`
	WorkType       string `json:"work_type,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
}

// Metadata holds the identifiers from a posting's legal-info block.
type Metadata struct {
	DiceID     string `json:"dice_id,omitempty"`
	PositionID string `json:"position_id,omitempty"`
}

// JobRecord is one scraped posting. A record may be partial: extraction is
// best-effort and empty groups are still a success.
type JobRecord struct {
	JobID      string              `json:"job_id"`
	BasicInfo  BasicInfo           `json:"basic_info"`
	Overview   Overview            `json:"overview"`
	Skills     []string            `json:"skills"`
	JobDetails map[string][]string `json:"job_details"`
	Metadata   Metadata            `json:"metadata"`
}

// NewJobRecord returns an empty record for the given id with all groups
// initialized, matching the shape written to the output file.
func NewJobRecord(jobID string) JobRecord {
	return JobRecord{
		JobID:      jobID,
		Skills:     []string{},
		JobDetails: map[string][]string{},
	}
}

// FetchError reports a failed detail-page fetch. The failure is transient:
// the id stays unscraped and remains eligible for a future run.
type FetchError struct {
	JobID      string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch job %s: status %d", e.JobID, e.StatusCode)
	}
	return fmt.Sprintf("fetch job %s: %v", e.JobID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
