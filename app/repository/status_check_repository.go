package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaroute/aquaroute-api/app/models"
)

type statusCheckRepository struct {
	col *mongo.Collection
}

// NewStatusCheckRepository creates a new status check repository instance
func NewStatusCheckRepository(db *mongo.Database) StatusCheckRepository {
	return &statusCheckRepository{col: db.Collection(StatusChecksCollection)}
}

func (r *statusCheckRepository) Insert(ctx context.Context, check *models.StatusCheck) error {
	_, err := r.col.InsertOne(ctx, check)
	return err
}

func (r *statusCheckRepository) List(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	checks := make([]models.StatusCheck, 0)
	if err := cur.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}
