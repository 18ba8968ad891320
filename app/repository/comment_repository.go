package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaroute/aquaroute-api/app/models"
)

type commentRepository struct {
	col *mongo.Collection
}

// NewCommentRepository creates a new comment repository instance
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{col: db.Collection(CommentsCollection)}
}

func (r *commentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	_, err := r.col.InsertOne(ctx, comment)
	return err
}

func (r *commentRepository) ListByReport(ctx context.Context, reportID string, limit int) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cur, err := r.col.Find(ctx, bson.M{"report_id": reportID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := make([]models.Comment, 0)
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
