package events

import (
	"time"

	"github.com/careerloop/platform/internal/pubsub"
)

// JobScrapeTriggeredPayload marks the start of a scrape process for a job
// posting. ProcessID distinguishes concurrent scrapes of the same job.
type JobScrapeTriggeredPayload struct {
	JobID       string    `json:"job_id" validate:"required"`
	ProcessID   string    `json:"process_id" validate:"required"`
	JobURL      string    `json:"job_url,omitempty" validate:"omitempty,url"`
	TriggeredAt time.Time `json:"triggered_at" validate:"required"`
}

// JobScrapeSuccessPayload marks a scrape process that completed.
type JobScrapeSuccessPayload struct {
	JobID       string    `json:"job_id" validate:"required"`
	ProcessID   string    `json:"process_id" validate:"required"`
	JobURL      string    `json:"job_url,omitempty" validate:"omitempty,url"`
	CompletedAt time.Time `json:"completed_at" validate:"required"`
}

// JobScrapeFailedPayload marks a scrape process that gave up.
type JobScrapeFailedPayload struct {
	JobID        string    `json:"job_id" validate:"required"`
	ProcessID    string    `json:"process_id" validate:"required"`
	ErrorMessage string    `json:"error_message" validate:"required"`
	FailedAt     time.Time `json:"failed_at" validate:"required"`
}

var (
	JobScrapeTriggered = pubsub.NewEvent[JobScrapeTriggeredPayload](
		"job-scrape-triggered",
		"Published when a job posting scrape starts",
	)

	JobScrapeSuccess = pubsub.NewEvent[JobScrapeSuccessPayload](
		"job-scrape-success",
		"Published when a job posting scrape completes",
	)

	JobScrapeFailed = pubsub.NewEvent[JobScrapeFailedPayload](
		"job-scrape-failed",
		"Published when a job posting scrape fails",
	)
)
