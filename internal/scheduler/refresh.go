package scheduler

import "context"

// Refresher re-prices every user's portfolio
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// RefreshJob periodically refreshes quotes and weights for all users
type RefreshJob struct {
	refresher Refresher
	schedule  string
}

// NewRefreshJob creates the quote refresh job. An empty schedule means every minute.
func NewRefreshJob(refresher Refresher, schedule string) *RefreshJob {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &RefreshJob{refresher: refresher, schedule: schedule}
}

func (j *RefreshJob) Name() string     { return "quote_refresh" }
func (j *RefreshJob) Schedule() string { return j.schedule }

func (j *RefreshJob) Run(ctx context.Context) error {
	return j.refresher.RefreshAll(ctx)
}
