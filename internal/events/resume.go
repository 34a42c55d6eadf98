package events

import (
	"time"

	"github.com/careerloop/platform/internal/pubsub"
)

// Resume change types as emitted by the resume service.
const (
	ResumeChangeCreate  = "create"
	ResumeChangeUpdate  = "update"
	ResumeChangeDelete  = "delete"
	ResumeChangeReorder = "reorder"
)

// ResumeUpdatedPayload describes a committed change to a resume.
type ResumeUpdatedPayload struct {
	ResumeID      string   `json:"resume_id" validate:"required"`
	UserID        string   `json:"user_id" validate:"required"`
	ChangeType    string   `json:"change_type" validate:"required,oneof=create update delete reorder"`
	SectionType   string   `json:"section_type,omitempty"`
	ChangedFields []string `json:"changed_fields,omitempty"`
}

// ThumbnailGenerationTriggeredPayload asks the asset pipeline to refresh a
// resume's thumbnail. ChangeScore explains why the refresh fired.
type ThumbnailGenerationTriggeredPayload struct {
	ResumeID    string    `json:"resume_id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	Reason      string    `json:"reason" validate:"required"`
	ChangeScore float64   `json:"change_score" validate:"gte=0"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
}

var (
	ResumeUpdated = pubsub.NewEvent[ResumeUpdatedPayload](
		"resume-updated",
		"Published after a resume change commits",
	)

	ThumbnailGenerationTriggered = pubsub.NewEvent[ThumbnailGenerationTriggeredPayload](
		"thumbnail-generation-triggered",
		"Published when a resume change warrants a thumbnail refresh",
	)
)
