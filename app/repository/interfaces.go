package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aquaroute/aquaroute-api/app/models"
)

// ErrNotFound is returned when a lookup or update matches no document.
var ErrNotFound = errors.New("record not found")

// Collection names.
const (
	ReportsCollection      = "waterlogging_reports"
	CommentsCollection     = "comments"
	StatusChecksCollection = "status_checks"
)

// Result caps applied by list queries.
const (
	MaxReportResults      = 1000
	MaxCommentResults     = 100
	MaxStatusCheckResults = 1000
)

// ReportRepository defines the interface for report storage
type ReportRepository interface {
	Insert(ctx context.Context, report *models.Report) error
	// FindByID returns ErrNotFound when no report has the id, expired or not.
	FindByID(ctx context.Context, id string) (*models.Report, error)
	// FindActive returns reports with expires_at >= now and created_at >=
	// since, oldest first, at most limit.
	FindActive(ctx context.Context, now, since time.Time, limit int) ([]models.Report, error)
	// DeleteExpired removes every report with expires_at < now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// IncrementVotes atomically adds the deltas to a report that has not
	// expired at now and returns the updated document, or ErrNotFound.
	IncrementVotes(ctx context.Context, id string, scoreDelta, votesDelta int, now time.Time) (*models.Report, error)
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	ListByReport(ctx context.Context, reportID string, limit int) ([]models.Comment, error)
}

// StatusCheckRepository defines the interface for status check storage
type StatusCheckRepository interface {
	Insert(ctx context.Context, check *models.StatusCheck) error
	List(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

// Repositories groups the stores used by the service layer.
type Repositories struct {
	Report      ReportRepository
	Comment     CommentRepository
	StatusCheck StatusCheckRepository
}
