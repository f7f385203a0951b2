package processor

import (
	"time"

	"github.com/caresignal/accredwatch/pkg/model"
)

// Enrich computes derived metrics for one facility record. Missing
// collections count as empty. Enrichment never fails: a record that cannot
// be enriched any further is still returned with whatever was computed, so
// one bad record cannot abort a batch.
func Enrich(rec model.FacilityRecord, now time.Time) model.EnrichedFacility {
	enriched := model.EnrichedFacility{
		FacilityRecord:      rec,
		TotalServices:       len(rec.Services),
		TotalAccreditations: len(rec.Accreditations),
		TotalLabs:           len(rec.Labs),
		ProcessedAt:         now.UTC().Format(time.RFC3339),
	}

	// No status field exists in the source data, so every accreditation
	// counts as active.
	enriched.ActiveAccreditations = enriched.TotalAccreditations

	if enriched.TotalServices > 0 {
		enriched.EmployeesPerService = float64(rec.EmployeeCount) / float64(enriched.TotalServices)
	}

	return enriched
}
