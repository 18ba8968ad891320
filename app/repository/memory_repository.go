package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aquaroute/aquaroute-api/app/models"
)

// memoryReportRepository keeps reports in insertion order behind a mutex.
type memoryReportRepository struct {
	mu      sync.RWMutex
	reports []models.Report
}

func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{}
}

func (r *memoryReportRepository) Insert(_ context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, *report)
	return nil
}

func (r *memoryReportRepository) FindByID(_ context.Context, id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.reports {
		if r.reports[i].ID == id {
			report := r.reports[i]
			return &report, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryReportRepository) FindActive(_ context.Context, now, since time.Time, limit int) ([]models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Report, 0)
	for _, report := range r.reports {
		if report.ExpiresAt.Before(now) || report.CreatedAt.Before(since) {
			continue
		}
		out = append(out, report)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryReportRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.reports[:0]
	var deleted int64
	for _, report := range r.reports {
		if report.ExpiresAt.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, report)
	}
	r.reports = kept
	return deleted, nil
}

func (r *memoryReportRepository) IncrementVotes(_ context.Context, id string, scoreDelta, votesDelta int, now time.Time) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID != id {
			continue
		}
		if r.reports[i].ExpiresAt.Before(now) {
			return nil, ErrNotFound
		}
		r.reports[i].AccuracyScore += scoreDelta
		r.reports[i].TotalVotes += votesDelta
		report := r.reports[i]
		return &report, nil
	}
	return nil, ErrNotFound
}

type memoryCommentRepository struct {
	mu       sync.RWMutex
	comments []models.Comment
}

func NewMemoryCommentRepository() CommentRepository {
	return &memoryCommentRepository{}
}

func (r *memoryCommentRepository) Insert(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memoryCommentRepository) ListByReport(_ context.Context, reportID string, limit int) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.ReportID == reportID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryStatusCheckRepository struct {
	mu     sync.RWMutex
	checks []models.StatusCheck
}

func NewMemoryStatusCheckRepository() StatusCheckRepository {
	return &memoryStatusCheckRepository{}
}

func (r *memoryStatusCheckRepository) Insert(_ context.Context, check *models.StatusCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, *check)
	return nil
}

func (r *memoryStatusCheckRepository) List(_ context.Context, limit int) ([]models.StatusCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.checks)
	if n > limit {
		n = limit
	}
	out := make([]models.StatusCheck, n)
	copy(out, r.checks[:n])
	return out, nil
}
