package reports

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/app/repository"
	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
	"github.com/aquaroute/aquaroute-api/internal/pkg/cache"
	"github.com/aquaroute/aquaroute-api/internal/pkg/imageprocessor"
	"github.com/aquaroute/aquaroute-api/internal/pkg/ingestion"
	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
)

var start = time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	clock   *clockwork.FakeClock
	repos   *repository.Repositories
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, listCache bool) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	m := metrics.NewMetricsForTesting()
	repos := repository.NewMemoryRepositories()

	var lc *cache.ListCache
	if listCache {
		lc = cache.NewListCache(newMapStorage(), time.Hour, m)
	}
	svc := NewService(Deps{
		Repos:    repos,
		Ingester: ingestion.New(imageprocessor.New(imageprocessor.DefaultOptions()), nil, clock, m),
		Cache:    lc,
		Clock:    clock,
		Metrics:  m,
	})
	return &fixture{svc: svc, clock: clock, repos: repos, metrics: m}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) create(t *testing.T, severity string) *models.Report {
	t.Helper()
	r, err := f.svc.CreateReport(context.Background(), models.ReportCreateRequest{
		Lat: ptr(28.6139), Lng: ptr(77.2090), Severity: ptr(severity),
	})
	require.NoError(t, err)
	return r
}

func TestCreateReport(t *testing.T) {
	f := newFixture(t, false)

	r := f.create(t, "Severe")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, models.SeveritySevere, r.Severity)
	assert.Equal(t, start, r.CreatedAt)
	assert.Equal(t, 24*time.Hour, r.ExpiresAt.Sub(r.CreatedAt))
	assert.Zero(t, r.AccuracyScore)
	assert.Zero(t, r.TotalVotes)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsCreated))

	stored, err := f.repos.Report.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)
}

func TestCreateReport_DefaultsToMedium(t *testing.T) {
	f := newFixture(t, false)
	r, err := f.svc.CreateReport(context.Background(), models.ReportCreateRequest{
		Lat: ptr(28.6139), Lng: ptr(77.2090),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, r.Severity)
}

func TestCreateReport_EmptySeverityIsInvalid(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.CreateReport(context.Background(), models.ReportCreateRequest{
		Lat: ptr(28.6139), Lng: ptr(77.2090), Severity: ptr(""),
	})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestCreateReport_Validation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.CreateReport(ctx, models.ReportCreateRequest{Lat: ptr(1.0), Lng: ptr(1.0), Severity: ptr("Catastrophic")})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.CreateReport(ctx, models.ReportCreateRequest{Lng: ptr(1.0)})
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))

	got, err := f.svc.ListReports(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got, "rejected submissions are not stored")
}

func TestCreateReport_UniqueIDs(t *testing.T) {
	f := newFixture(t, false)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := f.create(t, "Low").ID
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestCreateReport_ImageFallsBackInline(t *testing.T) {
	f := newFixture(t, false)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	r, err := f.svc.CreateReport(context.Background(), models.ReportCreateRequest{
		Lat: ptr(19.0), Lng: ptr(72.8), Image: payload,
	})
	require.NoError(t, err)
	assert.Equal(t, payload, r.ImageBase64)
	assert.Empty(t, r.ImageURL)
}

func TestCreateReport_UndecodableImageKeptInline(t *testing.T) {
	f := newFixture(t, false)
	r, err := f.svc.CreateReport(context.Background(), models.ReportCreateRequest{
		Lat: ptr(19.0), Lng: ptr(72.8), Image: " ??? ",
	})
	require.NoError(t, err)
	assert.Equal(t, "???", r.ImageBase64)
	assert.Empty(t, r.ImageURL)
}

func TestListReports_TimeFilters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	old := f.create(t, "Low") // t0
	f.clock.Advance(20 * time.Hour)
	mid := f.create(t, "Medium") // t0+20h
	f.clock.Advance(3*time.Hour + 30*time.Minute)
	recent := f.create(t, "Severe") // t0+23h30m
	f.clock.Advance(10 * time.Minute)

	ids := func(rs []models.Report) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	got, err := f.svc.ListReports(ctx, "1h")
	require.NoError(t, err)
	assert.Equal(t, []string{recent.ID}, ids(got))

	got, err = f.svc.ListReports(ctx, "6h")
	require.NoError(t, err)
	assert.Equal(t, []string{mid.ID, recent.ID}, ids(got))

	for _, filter := range []string{"24h", "", "7d", "1H"} {
		got, err = f.svc.ListReports(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, []string{old.ID, mid.ID, recent.ID}, ids(got), "filter %q", filter)
	}
}

func TestListReports_PurgesExpired(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	expired := f.create(t, "Low")
	f.clock.Advance(12 * time.Hour)
	live := f.create(t, "Low")
	f.clock.Advance(12*time.Hour + time.Millisecond)

	got, err := f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)

	_, err = f.repos.Report.FindByID(ctx, expired.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsExpired.WithLabelValues(metrics.SweepSourceList)))
}

func TestListReports_VisibleUntilExactExpiry(t *testing.T) {
	f := newFixture(t, false)
	r := f.create(t, "Low")
	f.clock.Advance(24 * time.Hour)

	got, err := f.svc.ListReports(context.Background(), "24h")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.ID, got[0].ID)
}

func TestVote(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	r := f.create(t, "Medium")

	res, err := f.svc.Vote(ctx, r.ID, models.VoteRequest{VoteType: ptr("up")})
	require.NoError(t, err)
	assert.Equal(t, "Vote recorded", res.Message)
	assert.Equal(t, 1, res.AccuracyScore)
	assert.Equal(t, 1, res.TotalVotes)

	res, err = f.svc.Vote(ctx, r.ID, models.VoteRequest{VoteType: ptr("down")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.AccuracyScore)
	assert.Equal(t, 2, res.TotalVotes)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Votes.WithLabelValues("up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Votes.WithLabelValues("down")))
}

// Down-votes are not floored: the score goes negative.
func TestVote_DownVotesAreUnbounded(t *testing.T) {
	f := newFixture(t, false)
	r := f.create(t, "Low")

	var res *models.VoteResult
	var err error
	for i := 0; i < 3; i++ {
		res, err = f.svc.Vote(context.Background(), r.ID, models.VoteRequest{VoteType: ptr("down")})
		require.NoError(t, err)
	}
	assert.Equal(t, -3, res.AccuracyScore)
	assert.Equal(t, 3, res.TotalVotes)
}

func TestVote_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	r := f.create(t, "Low")

	_, err := f.svc.Vote(ctx, "no-such-report", models.VoteRequest{VoteType: ptr("up")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Vote(ctx, r.ID, models.VoteRequest{VoteType: ptr("sideways")})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.Vote(ctx, "no-such-report", models.VoteRequest{VoteType: ptr("sideways")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "unknown report wins over bad vote type")

	_, err = f.svc.Vote(ctx, r.ID, models.VoteRequest{})
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))

	stored, err := f.repos.Report.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalVotes, "rejected votes change nothing")
}

func TestVote_ExpiredReportIsNotFound(t *testing.T) {
	f := newFixture(t, false)
	r := f.create(t, "Low")
	f.clock.Advance(25 * time.Hour)

	_, err := f.svc.Vote(context.Background(), r.ID, models.VoteRequest{VoteType: ptr("up")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestVote_Concurrent(t *testing.T) {
	f := newFixture(t, false)
	r := f.create(t, "Low")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(up bool) {
			defer wg.Done()
			vt := "down"
			if up {
				vt = "up"
			}
			_, err := f.svc.Vote(context.Background(), r.ID, models.VoteRequest{VoteType: ptr(vt)})
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	stored, err := f.repos.Report.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AccuracyScore)
	assert.Equal(t, 40, stored.TotalVotes)
}

func TestComments(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	r := f.create(t, "Severe")

	c1, err := f.svc.CreateComment(ctx, r.ID, models.CommentCreateRequest{Text: ptr("Water up to the knees")})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", c1.Author)
	assert.Equal(t, r.ID, c1.ReportID)

	f.clock.Advance(time.Minute)
	_, err = f.svc.CreateComment(ctx, r.ID, models.CommentCreateRequest{Text: ptr("Receding now"), Author: ptr("Ravi")})
	require.NoError(t, err)

	got, err := f.svc.ListComments(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Water up to the knees", got[0].Text)
	assert.Equal(t, "Ravi", got[1].Author)

	got, err = f.svc.ListComments(ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CommentsCreated))
}

func TestCreateComment_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	r := f.create(t, "Low")

	_, err := f.svc.CreateComment(ctx, "missing", models.CommentCreateRequest{Text: ptr("hello")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.CreateComment(ctx, r.ID, models.CommentCreateRequest{Text: ptr(strings.Repeat("x", 201))})
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))

	_, err = f.svc.CreateComment(ctx, r.ID, models.CommentCreateRequest{Text: ptr(strings.Repeat("x", 200))})
	assert.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	_, err = f.svc.CreateComment(ctx, r.ID, models.CommentCreateRequest{Text: ptr("late")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListCache_InvalidatedByWrites(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	r := f.create(t, "Low")
	got, err := f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.svc.Vote(ctx, r.ID, models.VoteRequest{VoteType: ptr("up")})
	require.NoError(t, err)
	got, err = f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].AccuracyScore)

	second := f.create(t, "Severe")
	got, err = f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[1].ID)

	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.ListCache.WithLabelValues(metrics.CacheMiss)), 3.0)
}

// interleavingReports runs afterFind once, after a FindActive has read the
// store but before its result reaches the caller.
type interleavingReports struct {
	repository.ReportRepository
	afterFind func()
}

func (r *interleavingReports) FindActive(ctx context.Context, now, since time.Time, limit int) ([]models.Report, error) {
	out, err := r.ReportRepository.FindActive(ctx, now, since, limit)
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return out, err
}

func TestListCache_CreateDuringListIsNotLost(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	hooked := &interleavingReports{ReportRepository: f.repos.Report}
	f.svc.reports = hooked

	var created *models.Report
	hooked.afterFind = func() { created = f.create(t, "Severe") }

	got, err := f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	assert.Empty(t, got, "the first list read the store before the create")
	require.NotNil(t, created)

	got, err = f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestListCache_NeverServesExpired(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.create(t, "Low")
	f.clock.Advance(time.Hour)
	live := f.create(t, "Low")

	_, err := f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)

	f.clock.Advance(23*time.Hour + time.Second)
	got, err := f.svc.ListReports(ctx, "24h")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)
}

func TestStatusChecks(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	c, err := f.svc.CreateStatusCheck(ctx, models.StatusCheckCreateRequest{ClientName: ptr("uptime-monitor")})
	require.NoError(t, err)
	assert.Equal(t, "uptime-monitor", c.ClientName)
	assert.Equal(t, start, c.Timestamp)

	_, err = f.svc.CreateStatusCheck(ctx, models.StatusCheckCreateRequest{})
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))

	got, err := f.svc.ListStatusChecks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
