package processor

import (
	"math"
	"time"

	"github.com/caresignal/accredwatch/pkg/model"
)

const (
	// dateLayout is the calendar date format of valid_until values.
	dateLayout = "2006-01-02"

	// warningWindowDays is how far ahead of now an accreditation is
	// already considered at risk. The boundary is inclusive: exactly 90
	// days out counts.
	warningWindowDays = 90
)

// FindExpiring scans enriched facilities for accreditations whose
// valid_until falls within the warning window of now. A facility appears in
// the result at most once, carrying its at-risk entries in source order;
// facilities with nothing at risk are omitted. Result order is input order.
//
// An accreditation without a valid_until is never flagged. A valid_until
// that fails to parse aborts evaluation of that one facility and is
// reported as an EvalError; the remaining facilities are still evaluated.
func FindExpiring(records []model.EnrichedFacility, now time.Time) ([]model.ExpiringFacility, []model.EvalError) {
	warningThreshold := now.AddDate(0, 0, warningWindowDays)

	var expiring []model.ExpiringFacility
	var evalErrs []model.EvalError

	for _, facility := range records {
		entries, evalErr := expiringEntries(facility, now, warningThreshold)
		if evalErr != nil {
			evalErrs = append(evalErrs, *evalErr)
			continue
		}
		if len(entries) == 0 {
			continue
		}
		expiring = append(expiring, model.ExpiringFacility{
			FacilityID:             facility.FacilityID,
			FacilityName:           facility.FacilityName,
			Location:               facility.Location,
			ExpiringAccreditations: entries,
		})
	}

	return expiring, evalErrs
}

func expiringEntries(facility model.EnrichedFacility, now, threshold time.Time) ([]model.ExpiringAccreditation, *model.EvalError) {
	var entries []model.ExpiringAccreditation

	for _, accred := range facility.Accreditations {
		if accred.ValidUntil == "" {
			continue
		}

		validUntil, err := time.Parse(dateLayout, accred.ValidUntil)
		if err != nil {
			return nil, &model.EvalError{
				FacilityID:      facility.FacilityID,
				AccreditationID: accred.AccreditationID,
				Value:           accred.ValidUntil,
				Error:           err.Error(),
			}
		}

		if validUntil.After(threshold) {
			continue
		}

		days := daysUntil(now, validUntil)
		entries = append(entries, model.ExpiringAccreditation{
			AccreditationBody: accred.AccreditationBody,
			AccreditationID:   accred.AccreditationID,
			AccreditationType: accred.AccreditationType,
			ValidUntil:        accred.ValidUntil,
			DaysToExpiry:      days,
			Priority:          priorityFor(days),
		})
	}

	return entries, nil
}

// daysUntil floors the distance from now to the expiry date into whole
// days. Already-expired dates come out zero or negative and flow through
// as Critical.
func daysUntil(now, validUntil time.Time) int {
	return int(math.Floor(validUntil.Sub(now).Hours() / 24))
}

// priorityFor buckets days-to-expiry into an alert tier. First match wins:
// 30 days or fewer is Critical, 31-60 High, everything else in the window
// Medium.
func priorityFor(days int) model.Priority {
	switch {
	case days <= 30:
		return model.PriorityCritical
	case days <= 60:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}
