package resume

import (
	"github.com/careerloop/platform/internal/events"
)

// DefaultThreshold is the change score at or above which a thumbnail
// refresh is triggered.
const DefaultThreshold = 0.5

// fieldWeight is the score each individually changed field contributes on
// top of the change-type base.
const fieldWeight = 0.1

// Score rates how visually significant a resume change is. Creating or
// deleting content reshapes the document; touching individual fields
// matters less unless many changed at once.
func Score(p events.ResumeUpdatedPayload) float64 {
	var base float64
	switch p.ChangeType {
	case events.ResumeChangeCreate:
		base = 1.0
	case events.ResumeChangeDelete:
		base = 0.8
	case events.ResumeChangeReorder:
		base = 0.6
	case events.ResumeChangeUpdate:
		base = 0.3
	}

	score := base + float64(len(p.ChangedFields))*fieldWeight
	if score > 1.0 {
		score = 1.0
	}
	return score
}
