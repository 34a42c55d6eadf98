package events

import (
	"testing"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicRegistration(t *testing.T) {
	topics := []string{
		"user-created",
		"user-deleted",
		"user-feedback-submitted",
		"waitlist-submitted",
		"waitlist-loops-sync-triggered",
		"job-scrape-triggered",
		"job-scrape-success",
		"job-scrape-failed",
		"resume-updated",
		"thumbnail-generation-triggered",
	}

	t.Run("every platform topic is registered at init", func(t *testing.T) {
		for _, name := range topics {
			topic, found := topicmgr.Default().Get(name)
			require.True(t, found, "topic %s not registered", name)
			assert.Equal(t, topicmgr.GuaranteeAtLeastOnce, topic.Guarantee())
			assert.NotEmpty(t, topic.Description())
		}
	})

	t.Run("payload fields are documented in topic metadata", func(t *testing.T) {
		topic, found := topicmgr.Default().Get(ResumeUpdated.Name())
		require.True(t, found)

		fields, ok := topic.Metadata()["payload_fields"].([]string)
		require.True(t, ok)
		assert.Contains(t, fields, "resume_id")
		assert.Contains(t, fields, "change_type")
	})
}
