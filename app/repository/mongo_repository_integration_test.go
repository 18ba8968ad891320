//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/app/repository"
)

// startMongo runs a throwaway MongoDB and returns a fresh database on it.
func startMongo(ctx context.Context, t *testing.T) *mongo.Database {
	t.Helper()

	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err, "start mongodb container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("aquaroute_test")
}

func TestMongoRepositories(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repos := repository.NewMongoRepositories(startMongo(ctx, t))
	now := time.Now().UTC().Truncate(time.Millisecond)

	in := models.ReportInput{Lat: 28.6139, Lng: 77.209, Severity: models.SeveritySevere}
	expired := models.NewReport(in, now.Add(-25*time.Hour))
	older := models.NewReport(in, now.Add(-3*time.Hour))
	newer := models.NewReport(in, now.Add(-time.Minute))
	for _, r := range []*models.Report{newer, expired, older} {
		require.NoError(t, repos.Report.Insert(ctx, r))
	}

	t.Run("round trip keeps the 24h lifetime exact", func(t *testing.T) {
		got, err := repos.Report.FindByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, newer.CreatedAt, got.CreatedAt.UTC())
		assert.Equal(t, models.ReportTTL, got.ExpiresAt.Sub(got.CreatedAt))
		assert.Equal(t, models.SeveritySevere, got.Severity)
	})

	t.Run("find active filters and sorts", func(t *testing.T) {
		got, err := repos.Report.FindActive(ctx, now, now.Add(-24*time.Hour), repository.MaxReportResults)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, older.ID, got[0].ID)
		assert.Equal(t, newer.ID, got[1].ID)
	})

	t.Run("votes are atomic and skip expired reports", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(up bool) {
				defer wg.Done()
				delta := -1
				if up {
					delta = 1
				}
				_, err := repos.Report.IncrementVotes(ctx, older.ID, delta, 1, now)
				assert.NoError(t, err)
			}(i%4 != 0)
		}
		wg.Wait()

		got, err := repos.Report.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.AccuracyScore)
		assert.Equal(t, 20, got.TotalVotes)

		_, err = repos.Report.IncrementVotes(ctx, expired.ID, 1, 1, now)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repos.Report.IncrementVotes(ctx, "does-not-exist", 1, 1, now)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		n, err := repos.Report.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = repos.Report.FindByID(ctx, expired.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("comments", func(t *testing.T) {
		first := models.NewComment(newer.ID, models.CommentInput{Text: "knee deep", Author: "A"}, now)
		second := models.NewComment(newer.ID, models.CommentInput{Text: "receding", Author: "B"}, now.Add(time.Second))
		require.NoError(t, repos.Comment.Insert(ctx, second))
		require.NoError(t, repos.Comment.Insert(ctx, first))

		got, err := repos.Comment.ListByReport(ctx, newer.ID, repository.MaxCommentResults)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "knee deep", got[0].Text)

		got, err = repos.Comment.ListByReport(ctx, "unknown", repository.MaxCommentResults)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("status checks", func(t *testing.T) {
		require.NoError(t, repos.StatusCheck.Insert(ctx, models.NewStatusCheck("field-app", now)))
		got, err := repos.StatusCheck.List(ctx, repository.MaxStatusCheckResults)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "field-app", got[0].ClientName)
	})
}
