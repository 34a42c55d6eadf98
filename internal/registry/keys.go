package registry

import (
	"github.com/careerloop/platform/internal/admin"
	"github.com/careerloop/platform/internal/domain"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/careerloop/platform/internal/pubsub/runtime"
)

// Service keys for dependency injection. Using constants prevents typos.
var (
	PublisherKey     = Key[pubsub.Publisher]("platform.publisher")
	RuntimeKey       = Key[*runtime.Runtime]("platform.runtime")
	DeadLettersKey   = Key[*runtime.DeadLetterStore]("platform.deadletters")
	AggregatorKey    = Key[*admin.Aggregator]("platform.aggregator")
	UserDirectoryKey = Key[domain.UserDirectory]("platform.userdirectory")
)
