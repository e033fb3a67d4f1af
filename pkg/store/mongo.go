package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/settings"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

const (
	collBookings      = "bookings"
	collSubscriptions = "subscriptions"

	defaultConnTimeout = 10 // Seconds
)

// MongoStore implements Store on MongoDB. Newsletter idempotence rides on a
// unique index over subscription emails: the duplicate-key error from a
// repeated insert is translated to a no-op, every other failure surfaces as
// a persistence error.
type MongoStore struct {
	db *mongo.Database
}

var _ Store = (*MongoStore)(nil)

// Connect dials MongoDB from settings and pings it before returning.
func Connect(ctx context.Context, cfg settings.MongoDB) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Second)

	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnTimeout
	}
	connCtx, cancel := context.WithTimeout(ctx, utils.ToDuration(timeout))
	defer cancel()

	client, err := mongo.Connect(connCtx, opts)
	if err != nil {
		return nil, apperr.MapError("mongodb", err, apperr.CodePersistence,
			"failed to connect", http.StatusInternalServerError)
	}

	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		return nil, apperr.MapError("mongodb", err, apperr.CodePersistence,
			"failed to ping", http.StatusInternalServerError)
	}

	return client, nil
}

// NewMongoStore wraps a connected client for the given database.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{db: client.Database(database)}
}

// EnsureIndexes creates the unique email index duplicate detection depends
// on. Safe to call on every startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collSubscriptions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return apperr.MapError("subscription", err, apperr.CodePersistence,
			"failed to ensure indexes", http.StatusInternalServerError)
	}
	return nil
}

// SaveBooking persists a booking inquiry.
func (s *MongoStore) SaveBooking(ctx context.Context, booking *Booking) error {
	booking.CreatedAt = time.Now()

	res, err := s.db.Collection(collBookings).InsertOne(ctx, booking)
	if err != nil {
		return apperr.MapError("booking", err, apperr.CodePersistence,
			apperr.MsgSaveFailed, http.StatusInternalServerError)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid
	}
	return nil
}

// SaveSubscription persists a newsletter signup, treating a duplicate email
// as success without a second write.
func (s *MongoStore) SaveSubscription(ctx context.Context, sub *Subscription) (bool, error) {
	sub.CreatedAt = time.Now()

	_, err := s.db.Collection(collSubscriptions).InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, apperr.MapError("subscription", err, apperr.CodePersistence,
			apperr.MsgSaveFailed, http.StatusInternalServerError)
	}
	return true, nil
}

// Ping reports whether the store answers.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperr.MapError("store", err, apperr.CodePersistence,
			"unreachable", http.StatusInternalServerError)
	}
	return nil
}
