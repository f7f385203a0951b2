package alerts

import (
	"context"

	"github.com/caresignal/accredwatch/pkg/model"
)

// Sink delivers one rendered tier alert to an external channel. The tier is
// an opaque destination selector to the dispatcher; each sink resolves it to
// its own channel (an SNS topic, a webhook payload field).
type Sink interface {
	// Name returns the sink identifier.
	Name() string

	// Publish delivers one alert. Implementations must be safe for
	// concurrent use.
	Publish(ctx context.Context, tier model.Priority, subject, body string) error
}
