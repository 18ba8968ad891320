// Package reports implements the waterlogging report operations: creating
// and listing reports, voting on their accuracy, commenting, and the
// diagnostic status checks.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/jonboulle/clockwork"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/app/repository"
	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
	"github.com/aquaroute/aquaroute-api/internal/pkg/cache"
	"github.com/aquaroute/aquaroute-api/internal/pkg/ingestion"
	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
	"github.com/aquaroute/aquaroute-api/internal/pkg/validation"
)

// DefaultStoreTimeout bounds each store call when Deps leaves it unset.
const DefaultStoreTimeout = 8 * time.Second

// Deps are the collaborators of a Service. Cache may be nil.
type Deps struct {
	Repos        *repository.Repositories
	Ingester     *ingestion.Ingester
	Cache        *cache.ListCache
	Clock        clockwork.Clock
	Metrics      *metrics.Metrics
	StoreTimeout time.Duration
}

// Service implements the API operations on top of the repositories.
type Service struct {
	reports  repository.ReportRepository
	comments repository.CommentRepository
	checks   repository.StatusCheckRepository
	ingester *ingestion.Ingester
	cache    *cache.ListCache
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// NewService fills in a real clock and the default store timeout when unset.
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = DefaultStoreTimeout
	}
	return &Service{
		reports:  d.Repos.Report,
		comments: d.Repos.Comment,
		checks:   d.Repos.StatusCheck,
		ingester: d.Ingester,
		cache:    d.Cache,
		clock:    d.Clock,
		metrics:  d.Metrics,
		timeout:  d.StoreTimeout,
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// store bounds a single store call and records its duration under op.
func (s *Service) store(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := s.clock.Now()
	err := fn(ctx)
	s.metrics.StoreDuration.WithLabelValues(op).Observe(s.clock.Since(start).Seconds())
	return err
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// CreateReport validates req, ingests its optional image and stores a new
// report that expires 24h after now.
func (s *Service) CreateReport(ctx context.Context, req models.ReportCreateRequest) (*models.Report, error) {
	in, err := validation.ReportCreate(req)
	if err != nil {
		return nil, err
	}

	report := models.NewReport(in, s.now())
	if in.Image != "" && s.ingester != nil {
		s.ingester.IngestEncoded(ctx, in.Image).Apply(report)
	}

	err = s.store(ctx, "report_insert", func(ctx context.Context) error {
		return s.reports.Insert(ctx, report)
	})
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	s.invalidate()
	s.metrics.ReportsCreated.Inc()
	log.Infof("[Reports] Created report %s (%s) at %.5f,%.5f", report.ID, report.Severity, report.Lat, report.Lng)
	return report, nil
}

// ListReports purges expired reports, then returns the active ones created
// inside the time filter window, oldest first. The two steps are separate
// store calls; a concurrent sweep can only hide reports, never add them.
func (s *Service) ListReports(ctx context.Context, timeFilter string) ([]models.Report, error) {
	filter := models.ParseTimeFilter(timeFilter)

	if _, err := s.SweepExpired(ctx, metrics.SweepSourceList); err != nil {
		return nil, err
	}

	now := s.now()
	var gen uint64
	if s.cache != nil {
		if cached, ok := s.cache.Get(filter, now); ok {
			return cached, nil
		}
		gen = s.cache.Generation()
	}

	var out []models.Report
	err := s.store(ctx, "report_find_active", func(ctx context.Context) error {
		var err error
		out, err = s.reports.FindActive(ctx, now, now.Add(-filter.Window()), repository.MaxReportResults)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(filter, out, gen)
	}
	return out, nil
}

// SweepExpired deletes every report whose expires_at has passed.
func (s *Service) SweepExpired(ctx context.Context, source string) (int64, error) {
	now := s.now()
	var n int64
	err := s.store(ctx, "report_delete_expired", func(ctx context.Context) error {
		var err error
		n, err = s.reports.DeleteExpired(ctx, now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired reports: %w", err)
	}
	if n > 0 {
		s.invalidate()
		s.metrics.ReportsExpired.WithLabelValues(source).Add(float64(n))
		log.Debugf("[Reports] Swept %d expired reports (%s)", n, source)
	}
	return n, nil
}

// findActive returns the report or a not-found error if it is unknown or
// has expired.
func (s *Service) findActive(ctx context.Context, id string) (*models.Report, error) {
	var report *models.Report
	err := s.store(ctx, "report_find", func(ctx context.Context) error {
		var err error
		report, err = s.reports.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	if report.IsExpired(s.now()) {
		return nil, apperr.NotFound("Report not found")
	}
	return report, nil
}

// Vote applies an up or down vote as one atomic increment. An unknown
// report is reported before an unknown vote type. Down-votes have no
// floor.
func (s *Service) Vote(ctx context.Context, reportID string, req models.VoteRequest) (*models.VoteResult, error) {
	dir, err := validation.Vote(req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInvalid {
			if _, ferr := s.findActive(ctx, reportID); ferr != nil {
				return nil, ferr
			}
		}
		return nil, err
	}

	var report *models.Report
	err = s.store(ctx, "report_increment_votes", func(ctx context.Context) error {
		var err error
		report, err = s.reports.IncrementVotes(ctx, reportID, dir.ScoreDelta(), 1, s.now())
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}

	s.invalidate()
	s.metrics.Votes.WithLabelValues(string(dir)).Inc()
	log.Debugf("[Reports] Vote %s on %s -> score=%d votes=%d", dir, reportID, report.AccuracyScore, report.TotalVotes)
	return &models.VoteResult{
		Message:       models.VoteRecordedMessage,
		AccuracyScore: report.AccuracyScore,
		TotalVotes:    report.TotalVotes,
	}, nil
}

// ListComments returns the comments on reportID, oldest first. Unknown ids
// yield an empty list.
func (s *Service) ListComments(ctx context.Context, reportID string) ([]models.Comment, error) {
	var out []models.Comment
	err := s.store(ctx, "comment_list", func(ctx context.Context) error {
		var err error
		out, err = s.comments.ListByReport(ctx, reportID, repository.MaxCommentResults)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

// CreateComment attaches a comment to an active report.
func (s *Service) CreateComment(ctx context.Context, reportID string, req models.CommentCreateRequest) (*models.Comment, error) {
	in, err := validation.CommentCreate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.findActive(ctx, reportID); err != nil {
		return nil, err
	}

	comment := models.NewComment(reportID, in, s.now())
	err = s.store(ctx, "comment_insert", func(ctx context.Context) error {
		return s.comments.Insert(ctx, comment)
	})
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	s.metrics.CommentsCreated.Inc()
	return comment, nil
}

// UploadImage ingests an already validated file upload.
func (s *Service) UploadImage(ctx context.Context, data []byte, mime string) ingestion.Result {
	return s.ingester.IngestFile(ctx, data, mime)
}

// CreateStatusCheck records a diagnostic ping from client_name.
func (s *Service) CreateStatusCheck(ctx context.Context, req models.StatusCheckCreateRequest) (*models.StatusCheck, error) {
	name, err := validation.StatusCheckCreate(req)
	if err != nil {
		return nil, err
	}
	check := models.NewStatusCheck(name, s.now())
	err = s.store(ctx, "status_check_insert", func(ctx context.Context) error {
		return s.checks.Insert(ctx, check)
	})
	if err != nil {
		return nil, fmt.Errorf("insert status check: %w", err)
	}
	return check, nil
}

// ListStatusChecks returns recorded status checks in insertion order.
func (s *Service) ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error) {
	var out []models.StatusCheck
	err := s.store(ctx, "status_check_list", func(ctx context.Context) error {
		var err error
		out, err = s.checks.List(ctx, repository.MaxStatusCheckResults)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list status checks: %w", err)
	}
	return out, nil
}
