// Package mongostore is the document storage adapter. The client is an
// explicitly constructed, explicitly passed object with defined init and
// teardown; nothing in here is process-global.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apartrent/apartment-service/internal/repository"
)

const (
	connectAttempts = 3
	connectDelay    = 2 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the server with a fixed bounded retry, then pings. After the
// last failed attempt it gives up for good.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		log.Printf("connecting to mongodb (attempt %d/%d)", attempt, connectAttempts)

		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(uri).
			SetServerSelectionTimeout(5*time.Second))
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return &Store{client: client, db: client.Database(dbName)}, nil
			}
			_ = client.Disconnect(ctx)
		}

		lastErr = err
		log.Printf("mongodb connection failed: %v", err)
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}
	return nil, fmt.Errorf("%w: %v", repository.ErrBackendUnavailable, lastErr)
}

func (s *Store) users() *mongo.Collection        { return s.db.Collection("users") }
func (s *Store) locations() *mongo.Collection    { return s.db.Collection("locations") }
func (s *Store) apartments() *mongo.Collection   { return s.db.Collection("apartments") }
func (s *Store) observations() *mongo.Collection { return s.db.Collection("apartment_observations") }

// EnsureSchema is a no-op for the document store; collections materialize on
// first insert.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.apartments().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
	})
	if err != nil {
		return err
	}

	_, err = s.locations().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "city", Value: 1},
			{Key: "street", Value: 1},
			{Key: "house_number", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.observations().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "apartment_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicateKey
	default:
		return err
	}
}
