package model

import "time"

// ResultStatus describes what happened to a single item during a run.
type ResultStatus string

// Result status constants.
const (
	StatusUpdated ResultStatus = "updated"
	StatusFailed  ResultStatus = "failed"
	StatusPlanned ResultStatus = "planned"
)

// ItemResult is the outcome of assigning an image to one item.
type ItemResult struct {
	Err      error        `json:"-"`
	Pool     PoolName     `json:"pool"`
	GroupKey string       `json:"group"`
	Image    string       `json:"image"`
	Status   ResultStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
	Item     Item         `json:"item"`
	Position int          `json:"position"`
}

// CategorySummary aggregates results for one category group.
type CategorySummary struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Pool    PoolName `json:"pool"`
	Items   int      `json:"items"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Planned int      `json:"planned"`
}

// Summary is the report produced at the end of a run.
type Summary struct {
	StartedAt   time.Time         `json:"started_at"`
	Categories  []CategorySummary `json:"categories"`
	Results     []ItemResult      `json:"results"`
	Duration    time.Duration     `json:"duration"`
	TotalItems  int               `json:"total_items"`
	Updated     int               `json:"updated"`
	Failed      int               `json:"failed"`
	Planned     int               `json:"planned"`
	DryRun      bool              `json:"dry_run"`
	Interrupted bool              `json:"interrupted"`
}

// Record adds a result to the summary and to its category row.
// The category row must already have been opened with StartCategory.
func (s *Summary) Record(result ItemResult) {
	s.Results = append(s.Results, result)

	var cat *CategorySummary
	for i := range s.Categories {
		if s.Categories[i].Key == result.GroupKey {
			cat = &s.Categories[i]
			break
		}
	}

	switch result.Status {
	case StatusUpdated:
		s.Updated++
		if cat != nil {
			cat.Updated++
		}
	case StatusFailed:
		s.Failed++
		if cat != nil {
			cat.Failed++
		}
	case StatusPlanned:
		s.Planned++
		if cat != nil {
			cat.Planned++
		}
	}
}

// StartCategory opens a per-category row for a group.
func (s *Summary) StartCategory(group CategoryGroup, pool PoolName) {
	s.Categories = append(s.Categories, CategorySummary{
		Key:   group.Key,
		Label: group.DisplayLabel(),
		Pool:  pool,
		Items: len(group.Items),
	})
}

// FailedResults returns only the failed item results.
func (s *Summary) FailedResults() []ItemResult {
	var failed []ItemResult
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
