package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aquaroute/aquaroute-api/app/repository"
)

const maxRetries = 5

var retryDelay = 5 * time.Second

// Store owns the MongoDB client for the lifetime of the process.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and pings it, retrying a bounded number of times so
// the API can come up alongside a database container that is still starting.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		store, err := dial(ctx, uri, dbName, timeout)
		if err == nil {
			log.Infof("[Database] Connected to %s (db=%s)", redactURI(uri), dbName)
			return store, nil
		}
		lastErr = err

		log.Warnf("[Database] Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("connect to %s: %w", redactURI(uri), lastErr)
}

func dial(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// DB returns the database handle repositories are built on.
func (s *Store) DB() *mongo.Database { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the service relies on. The TTL index on
// expires_at lets MongoDB purge expired reports even when nobody lists.
// Failures are collected so one bad index does not hide the others.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	type spec struct {
		collection string
		model      mongo.IndexModel
	}
	specs := []spec{
		{repository.ReportsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("id_unique"),
		}},
		{repository.ReportsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		}},
		{repository.ReportsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at"),
		}},
		{repository.CommentsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "report_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("report_id_created_at"),
		}},
		{repository.StatusChecksCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("id_unique"),
		}},
	}

	var errs []string
	for _, sp := range specs {
		if _, err := s.db.Collection(sp.collection).Indexes().CreateOne(ctx, sp.model); err != nil {
			errs = append(errs, sp.collection+": "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func redactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}
