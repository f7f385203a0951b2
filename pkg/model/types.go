package model

import "time"

// FacilityRecord is a healthcare facility as stored in the source bucket.
// Collections may be absent in the JSON; absent means empty, never an error.
type FacilityRecord struct {
	FacilityID     string          `json:"facility_id"`
	FacilityName   string          `json:"facility_name"`
	Location       Location        `json:"location"`
	Services       []Service       `json:"services,omitempty"`
	Accreditations []Accreditation `json:"accreditations,omitempty"`
	Labs           []Lab           `json:"labs,omitempty"`
	EmployeeCount  int             `json:"employee_count,omitempty"`
}

// Location is the city/state pair of a facility.
type Location struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Service is a clinical service offered by a facility.
type Service struct {
	ServiceID   string `json:"service_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// Accreditation is a certification held by a facility. ValidUntil is an
// ISO YYYY-MM-DD date; when empty the accreditation never expires.
type Accreditation struct {
	AccreditationBody string `json:"accreditation_body"`
	AccreditationID   string `json:"accreditation_id"`
	AccreditationType string `json:"accreditation_type,omitempty"`
	ValidUntil        string `json:"valid_until,omitempty"`
}

// Lab is a laboratory operated by a facility.
type Lab struct {
	LabID   string `json:"lab_id,omitempty"`
	LabName string `json:"lab_name,omitempty"`
}

// EnrichedFacility is a FacilityRecord with derived metrics stamped on.
// ActiveAccreditations always equals TotalAccreditations: the source data
// carries no status field to filter on.
type EnrichedFacility struct {
	FacilityRecord

	TotalServices        int     `json:"total_services"`
	TotalAccreditations  int     `json:"total_accreditations"`
	TotalLabs            int     `json:"total_labs"`
	ActiveAccreditations int     `json:"active_accreditations"`
	EmployeesPerService  float64 `json:"employees_per_service"`

	// ProcessedAt is informational only and takes no part in expiry
	// decisions.
	ProcessedAt string `json:"processed_at"`
}

// Priority is the alert tier of an expiring accreditation.
type Priority string

const (
	PriorityCritical Priority = "Critical" // 30 days or fewer, including already expired
	PriorityHigh     Priority = "High"     // 31-60 days
	PriorityMedium   Priority = "Medium"   // 61-90 days
)

// Tiers lists the priorities in dispatch order.
var Tiers = []Priority{PriorityCritical, PriorityHigh, PriorityMedium}

// ExpiringAccreditation is one at-risk accreditation of a facility.
// DaysToExpiry may be zero or negative for accreditations already expired.
type ExpiringAccreditation struct {
	AccreditationBody string   `json:"accreditation_body"`
	AccreditationID   string   `json:"accreditation_id"`
	AccreditationType string   `json:"accreditation_type,omitempty"`
	ValidUntil        string   `json:"valid_until"`
	DaysToExpiry      int      `json:"days_to_expiry"`
	Priority          Priority `json:"priority"`
}

// ExpiringFacility is a facility with at least one at-risk accreditation.
// Entries keep the order of the source record.
type ExpiringFacility struct {
	FacilityID             string                  `json:"facility_id"`
	FacilityName           string                  `json:"facility_name"`
	Location               Location                `json:"location"`
	ExpiringAccreditations []ExpiringAccreditation `json:"expiring_accreditations"`
}

// EvalError reports a valid_until value that failed to parse. It is a
// data-integrity fault for one facility, distinguishable from a facility
// that simply has nothing expiring.
type EvalError struct {
	FacilityID      string `json:"facility_id"`
	AccreditationID string `json:"accreditation_id"`
	Value           string `json:"value"`
	Error           string `json:"error"`
}

// ScanResult is the outcome of one batch run.
type ScanResult struct {
	ScanID              string             `json:"scan_id"`
	Message             string             `json:"message"`
	FacilitiesProcessed int                `json:"facilities_processed"`
	ExpiringFound       int                `json:"expiring_accreditations_found"`
	RecordsSkipped      int                `json:"records_skipped"`
	EvaluationErrors    []EvalError        `json:"evaluation_errors,omitempty"`
	Results             []EnrichedFacility `json:"results"`
	StartedAt           time.Time          `json:"started_at"`
	DurationMillis      int64              `json:"duration_ms"`
}
