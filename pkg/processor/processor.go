package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caresignal/accredwatch/pkg/alerts"
	"github.com/caresignal/accredwatch/pkg/model"
	"github.com/caresignal/accredwatch/pkg/source"
)

// previewLimit caps how many enriched records a scan result echoes back.
const previewLimit = 10

// Processor runs one batch over the facility records in a source: load,
// enrich, evaluate expiry, dispatch tier alerts. It holds no state between
// scans beyond the injected collaborators.
type Processor struct {
	source     source.Source
	dispatcher *alerts.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a processor with the given collaborators. dispatcher may be
// nil to evaluate without notifying.
func New(src source.Source, dispatcher *alerts.Dispatcher, logger *slog.Logger) *Processor {
	return &Processor{
		source:     src,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the wall-clock source, for tests.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Scan processes every .json record under prefix in one sequential pass.
// A record that cannot be fetched or parsed is logged and skipped; only a
// failure to list the source aborts the batch. The result previews at most
// the first ten enriched records, mirroring what callers get back over
// HTTP.
func (p *Processor) Scan(ctx context.Context, prefix string) (*model.ScanResult, error) {
	started := p.now()

	keys, err := p.source.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list facility records: %w", err)
	}
	if len(keys) == 0 {
		p.logger.Warn("no facility records found", "prefix", prefix)
	}

	var enriched []model.EnrichedFacility
	skipped := 0

	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}

		data, err := p.source.Fetch(ctx, key)
		if err != nil {
			p.logger.Error("fetch facility record failed", "key", key, "error", err)
			skipped++
			continue
		}

		var rec model.FacilityRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			p.logger.Error("parse facility record failed", "key", key, "error", err)
			skipped++
			continue
		}

		enriched = append(enriched, Enrich(rec, p.now()))
	}

	p.logger.Info("facility records enriched", "processed", len(enriched), "skipped", skipped)

	expiring, evalErrs := FindExpiring(enriched, p.now())
	for _, evalErr := range evalErrs {
		p.logger.Error("expiry evaluation failed",
			"facility_id", evalErr.FacilityID,
			"accreditation_id", evalErr.AccreditationID,
			"valid_until", evalErr.Value,
			"error", evalErr.Error,
		)
	}
	p.logger.Info("expiring accreditations evaluated", "facilities", len(expiring))

	if len(expiring) > 0 && p.dispatcher != nil {
		p.dispatcher.Dispatch(ctx, expiring)
	}

	preview := enriched
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	return &model.ScanResult{
		ScanID:              uuid.New().String(),
		Message:             "Healthcare facility data processed successfully",
		FacilitiesProcessed: len(enriched),
		ExpiringFound:       len(expiring),
		RecordsSkipped:      skipped,
		EvaluationErrors:    evalErrs,
		Results:             preview,
		StartedAt:           started.UTC(),
		DurationMillis:      time.Since(started).Milliseconds(),
	}, nil
}
