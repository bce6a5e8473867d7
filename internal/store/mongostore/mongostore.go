// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/store"
)

// Store wraps one database and its three collections.
type Store struct {
	client     *mongo.Client
	db         *mongo.Database
	facilities *mongo.Collection
	staff      *mongo.Collection
	feedback   *mongo.Collection

	indexRetryDelay time.Duration
}

const indexRetryAttempts = 1000

var _ store.Store = (*Store)(nil)

// New binds a Store to an already connected database.
func New(db *mongo.Database) *Store {
	return &Store{
		client:     db.Client(),
		db:         db,
		facilities: db.Collection(store.FacilityCollection),
		staff:      db.Collection(store.StaffCollection),
		feedback:   db.Collection(store.FeedbackCollection),

		indexRetryDelay: 2 * time.Second,
	}
}

// Connect creates the client and pings the primary with exponential backoff.
// A Store is returned even when every ping failed: the driver keeps trying to
// reach the cluster in the background and requests surface the outage as
// store errors until it is back.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is not configured (set MONGO_URI or DATABASE_URL)")
	}
	if cfg.DBName == "" {
		return nil, errors.New("mongo database name is not configured (set MONGO_DBNAME or DATABASE_NAME)")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	s := New(client.Database(cfg.DBName))

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	err = retry.Do(
		func() error {
			return client.Ping(ctx, readpref.Primary())
		},
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("mongo ping failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return s, fmt.Errorf("mongo unreachable after %d attempts: %w", attempts, err)
	}
	return s, nil
}

// EnsureIndexes creates the indexes the queries rely on. The unique index on
// facility.code backs the duplicate-code check against concurrent inserts.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.facilities.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_code"),
	})
	if err != nil {
		return fmt.Errorf("facility indexes: %w", err)
	}

	_, err = s.feedback.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("status_created_at")},
		{Keys: bson.D{{Key: "facility_code", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("facility_created_at")},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("assigned_to_status")},
	})
	if err != nil {
		return fmt.Errorf("feedback indexes: %w", err)
	}
	return nil
}

// EnsureIndexesInBackground keeps retrying EnsureIndexes until it succeeds or
// ctx ends, for a server that came up while the database was unreachable.
// The returned channel receives the final result.
func (s *Store) EnsureIndexesInBackground(ctx context.Context, logger *slog.Logger) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := retry.Do(
			func() error {
				return s.EnsureIndexes(ctx)
			},
			retry.Context(ctx),
			retry.Attempts(indexRetryAttempts),
			retry.Delay(s.indexRetryDelay),
			retry.MaxDelay(time.Minute),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				logger.Warn("index creation failed, will retry", "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			logger.Error("giving up on index creation; run the indexes command", "error", err)
		} else {
			logger.Info("mongo indexes in place")
		}
		done <- err
	}()
	return done
}

func (s *Store) Diagnose(ctx context.Context) store.Diagnostics {
	d := store.Diagnostics{Driver: config.DriverMongo, Database: s.db.Name()}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		d.Err = err
		return d
	}
	d.Connected = true

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		d.Err = err
		return d
	}
	d.Collections = names
	return d
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
