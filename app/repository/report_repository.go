package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaroute/aquaroute-api/app/models"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	col *mongo.Collection
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *mongo.Database) ReportRepository {
	return &reportRepository{col: db.Collection(ReportsCollection)}
}

func (r *reportRepository) Insert(ctx context.Context, report *models.Report) error {
	_, err := r.col.InsertOne(ctx, report)
	return err
}

func (r *reportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindActive(ctx context.Context, now, since time.Time, limit int) ([]models.Report, error) {
	filter := bson.M{
		"expires_at": bson.M{"$gte": now},
		"created_at": bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reports := make([]models.Report, 0)
	if err := cur.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *reportRepository) IncrementVotes(ctx context.Context, id string, scoreDelta, votesDelta int, now time.Time) (*models.Report, error) {
	filter := bson.M{
		"id":         id,
		"expires_at": bson.M{"$gte": now},
	}
	update := bson.M{"$inc": bson.M{
		"accuracy_score": scoreDelta,
		"total_votes":    votesDelta,
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 0})

	var report models.Report
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
