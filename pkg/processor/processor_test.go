package processor_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresignal/accredwatch/pkg/alerts"
	"github.com/caresignal/accredwatch/pkg/model"
	"github.com/caresignal/accredwatch/pkg/processor"
)

type fakeSource struct {
	objects  map[string][]byte
	keys     []string
	failKeys map[string]bool
	listErr  error
}

func (f *fakeSource) List(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys, nil
}

func (f *fakeSource) Fetch(_ context.Context, key string) ([]byte, error) {
	if f.failKeys[key] {
		return nil, errors.New("connection reset")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return data, nil
}

type publishCall struct {
	tier    model.Priority
	subject string
	body    string
}

type recordingSink struct {
	mu    sync.Mutex
	calls []publishCall
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Publish(_ context.Context, tier model.Priority, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, publishCall{tier: tier, subject: subject, body: body})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newFakeSource(t *testing.T, records ...model.FacilityRecord) *fakeSource {
	t.Helper()
	src := &fakeSource{
		objects:  map[string][]byte{},
		failKeys: map[string]bool{},
	}
	for i, rec := range records {
		key := fmt.Sprintf("facilities/fac-%03d.json", i)
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		src.objects[key] = data
		src.keys = append(src.keys, key)
	}
	return src
}

func TestProcessor_Scan(t *testing.T) {
	src := newFakeSource(t,
		model.FacilityRecord{FacilityID: "F1", Services: make([]model.Service, 2), EmployeeCount: 10},
		model.FacilityRecord{FacilityID: "F2"},
	)

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, "Healthcare facility data processed successfully", result.Message)
	assert.Equal(t, 2, result.FacilitiesProcessed)
	assert.Equal(t, 0, result.RecordsSkipped)
	assert.Equal(t, 0, result.ExpiringFound)
	require.Len(t, result.Results, 2)
	assert.InDelta(t, 5.0, result.Results[0].EmployeesPerService, 0.0001)
}

func TestProcessor_Scan_FetchFailureSkipsRecord(t *testing.T) {
	src := newFakeSource(t,
		model.FacilityRecord{FacilityID: "F1"},
		model.FacilityRecord{FacilityID: "F2"},
		model.FacilityRecord{FacilityID: "F3"},
	)
	src.failKeys["facilities/fac-001.json"] = true

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 2, result.FacilitiesProcessed)
	assert.Equal(t, 1, result.RecordsSkipped)
}

func TestProcessor_Scan_MalformedBlobSkipped(t *testing.T) {
	src := newFakeSource(t, model.FacilityRecord{FacilityID: "F1"})
	src.objects["facilities/broken.json"] = []byte("{not json")
	src.keys = append(src.keys, "facilities/broken.json")

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 1, result.FacilitiesProcessed)
	assert.Equal(t, 1, result.RecordsSkipped)
}

func TestProcessor_Scan_IgnoresNonJSONKeys(t *testing.T) {
	src := newFakeSource(t, model.FacilityRecord{FacilityID: "F1"})
	src.keys = append(src.keys, "facilities/", "facilities/readme.txt")

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 1, result.FacilitiesProcessed)
	assert.Equal(t, 0, result.RecordsSkipped)
}

func TestProcessor_Scan_PreviewCappedAtTen(t *testing.T) {
	records := make([]model.FacilityRecord, 13)
	for i := range records {
		records[i] = model.FacilityRecord{FacilityID: fmt.Sprintf("F%d", i)}
	}
	src := newFakeSource(t, records...)

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 13, result.FacilitiesProcessed)
	assert.Len(t, result.Results, 10)
}

func TestProcessor_Scan_ListFailureAbortsBatch(t *testing.T) {
	src := &fakeSource{listErr: errors.New("bucket unreachable")}

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list facility records")
}

func TestProcessor_Scan_DispatchesExpiring(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource(t,
		model.FacilityRecord{
			FacilityID:   "F1",
			FacilityName: "St. Mary General Hospital",
			Accreditations: []model.Accreditation{
				{AccreditationBody: "Joint Commission", AccreditationID: "JC-1", AccreditationType: "Hospital", ValidUntil: now.AddDate(0, 0, 10).Format("2006-01-02")},
			},
		},
		model.FacilityRecord{FacilityID: "F2"},
	)

	sink := &recordingSink{}
	dispatcher := alerts.NewDispatcher([]alerts.Sink{sink}, testLogger())

	proc := processor.New(src, dispatcher, testLogger()).WithClock(func() time.Time { return now })
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpiringFound)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, model.PriorityCritical, sink.calls[0].tier)
	assert.Contains(t, sink.calls[0].body, "St. Mary General Hospital")
}

func TestProcessor_Scan_MalformedDateReported(t *testing.T) {
	src := newFakeSource(t,
		model.FacilityRecord{
			FacilityID: "F1",
			Accreditations: []model.Accreditation{
				{AccreditationID: "JC-1", ValidUntil: "06/30/2026"},
			},
		},
	)

	proc := processor.New(src, nil, testLogger())
	result, err := proc.Scan(context.Background(), "facilities/")

	require.NoError(t, err)
	assert.Equal(t, 1, result.FacilitiesProcessed)
	assert.Equal(t, 0, result.ExpiringFound)
	require.Len(t, result.EvaluationErrors, 1)
	assert.Equal(t, "F1", result.EvaluationErrors[0].FacilityID)
}
