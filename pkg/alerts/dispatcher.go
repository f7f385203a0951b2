package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caresignal/accredwatch/pkg/model"
)

var tierSubjects = map[model.Priority]string{
	model.PriorityCritical: "Critical: Healthcare Accreditations Expiring Soon",
	model.PriorityHigh:     "High Priority: Healthcare Accreditations Expiring",
	model.PriorityMedium:   "Medium Priority: Healthcare Accreditations Expiring",
}

// Dispatcher groups expiring facilities by alert tier, renders one message
// per non-empty tier, and hands each message to every sink.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(sinks []Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source used in rendered messages.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch publishes tier alerts for the given facilities. Tiers are
// processed in fixed Critical, High, Medium order; a facility lands in
// every tier it has at least one entry for, so each tier's message is
// complete for its own severity. A failed publish is logged and never
// blocks the remaining tiers or sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, expiring []model.ExpiringFacility) {
	for _, tier := range model.Tiers {
		bucket := facilitiesInTier(expiring, tier)
		if len(bucket) == 0 {
			continue
		}

		subject := tierSubjects[tier]
		body := renderMessage(bucket, tier, d.now())

		for _, sink := range d.sinks {
			if err := sink.Publish(ctx, tier, subject, body); err != nil {
				d.logger.Error("publish tier alert failed",
					"sink", sink.Name(),
					"tier", tier,
					"facilities", len(bucket),
					"error", err,
				)
				continue
			}
			d.logger.Info("tier alert published",
				"sink", sink.Name(),
				"tier", tier,
				"facilities", len(bucket),
			)
		}
	}
}

// facilitiesInTier returns the facilities holding at least one entry of the
// given tier, in input order, each at most once.
func facilitiesInTier(expiring []model.ExpiringFacility, tier model.Priority) []model.ExpiringFacility {
	var bucket []model.ExpiringFacility
	for _, facility := range expiring {
		for _, entry := range facility.ExpiringAccreditations {
			if entry.Priority == tier {
				bucket = append(bucket, facility)
				break
			}
		}
	}
	return bucket
}

// renderMessage formats the human-readable alert body for one tier. Only
// entries of the bucket's own tier are listed per facility.
func renderMessage(bucket []model.ExpiringFacility, tier model.Priority, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Healthcare Accreditation Alert - %s Priority\n", tier)
	fmt.Fprintf(&b, "Date: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "The following healthcare facilities have %s priority accreditations expiring:\n", strings.ToLower(string(tier)))
	b.WriteString("\n")

	for _, facility := range bucket {
		fmt.Fprintf(&b, "Facility: %s\n", facility.FacilityName)
		fmt.Fprintf(&b, "Location: %s, %s\n", orPlaceholder(facility.Location.City), orPlaceholder(facility.Location.State))

		for _, entry := range facility.ExpiringAccreditations {
			if entry.Priority != tier {
				continue
			}
			fmt.Fprintf(&b, "  - %s (expires in %d days)\n", entry.AccreditationType, entry.DaysToExpiry)
		}

		b.WriteString("\n")
	}

	b.WriteString("Please take immediate action to renew these accreditations.")
	return b.String()
}

func orPlaceholder(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
