package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportTTL is the fixed lifetime of a report.
const ReportTTL = 24 * time.Hour

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeveritySevere Severity = "Severe"
)

// DefaultSeverity applies when a submission omits severity.
const DefaultSeverity = SeverityMedium

var Severities = []Severity{SeverityLow, SeverityMedium, SeveritySevere}

// ParseSeverity matches s exactly against the known levels.
func ParseSeverity(s string) (Severity, bool) {
	for _, sev := range Severities {
		if string(sev) == s {
			return sev, true
		}
	}
	return "", false
}

// Report is a geotagged waterlogging incident.
type Report struct {
	ID            string    `bson:"id" json:"id"`
	Lat           float64   `bson:"lat" json:"lat"`
	Lng           float64   `bson:"lng" json:"lng"`
	Severity      Severity  `bson:"severity" json:"severity"`
	ImageURL      string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageBase64   string    `bson:"image_base64,omitempty" json:"image_base64,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt     time.Time `bson:"expires_at" json:"expires_at"`
	AccuracyScore int       `bson:"accuracy_score" json:"accuracy_score"`
	TotalVotes    int       `bson:"total_votes" json:"total_votes"`
}

// ReportCreateRequest is the JSON body of POST /api/reports.
type ReportCreateRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
	// nil means Medium; any value present must be a known severity
	Severity *string `json:"severity"`
	Image    string  `json:"image"`
}

// ReportInput is a validated report submission.
type ReportInput struct {
	Lat      float64
	Lng      float64
	Severity Severity
	Image    string
}

// NewReport builds a fresh report created at now. Timestamps are truncated
// to milliseconds, the resolution of the document store.
func NewReport(in ReportInput, now time.Time) *Report {
	created := now.UTC().Truncate(time.Millisecond)
	return &Report{
		ID:        uuid.New().String(),
		Lat:       in.Lat,
		Lng:       in.Lng,
		Severity:  in.Severity,
		CreatedAt: created,
		ExpiresAt: created.Add(ReportTTL),
	}
}

// IsExpired reports whether the report's lifetime has passed at now.
func (r *Report) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// VisibleIn reports whether the report belongs in a list taken at now with
// the given recency window.
func (r *Report) VisibleIn(now time.Time, window time.Duration) bool {
	return !r.IsExpired(now) && !r.CreatedAt.Before(now.Add(-window))
}
