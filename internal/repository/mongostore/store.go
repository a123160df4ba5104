// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mongostore implements the account repository on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

// Store is the MongoDB-backed AccountStore.
type Store struct {
	coll *mongo.Collection
}

var _ repository.AccountStore = (*Store)(nil)

// Connect opens a client for uri and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return client, nil
}

// New returns a Store on db and ensures the username unique index exists.
func New(ctx context.Context, db *mongo.Database) (*Store, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating indexes: %w", err)
	}
	return &Store{coll: coll}, nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// FindByID retrieves an account by ID.
func (s *Store) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// FindOne retrieves the first account matching the filter.
func (s *Store) FindOne(ctx context.Context, f repository.Filter) (*models.Account, error) {
	return s.findOne(ctx, toBSON(f))
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*models.Account, error) {
	var acc models.Account
	if err := s.coll.FindOne(ctx, filter).Decode(&acc); err != nil {
		return nil, wrapError(err)
	}
	return &acc, nil
}

// Find lists accounts matching the filter, sorted by email.
func (s *Store) Find(ctx context.Context, f repository.Filter, opts repository.FindOptions) ([]models.Account, error) {
	fo := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit)).SetSkip(int64(opts.Skip))
	}
	if opts.OmitTokens {
		fo.SetProjection(bson.D{{Key: "tokens", Value: 0}})
	}

	cur, err := s.coll.Find(ctx, toBSON(f), fo)
	if err != nil {
		return nil, wrapError(err)
	}
	accounts := []models.Account{}
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, wrapError(err)
	}
	return accounts, nil
}

// Count returns the number of accounts matching the filter.
func (s *Store) Count(ctx context.Context, f repository.Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, toBSON(f))
	return n, wrapError(err)
}

// Save upserts the whole document.
func (s *Store) Save(ctx context.Context, acc *models.Account) error {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.RegistrationDate.IsZero() {
		acc.RegistrationDate = time.Now()
	}
	if acc.Tokens == nil {
		acc.Tokens = models.Tokens{}
	}

	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: acc.ID}}, acc, options.Replace().SetUpsert(true))
	return wrapError(err)
}

// Delete removes an account by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func toBSON(f repository.Filter) bson.D {
	filter := bson.D{}
	if f.Username != "" {
		filter = append(filter, bson.E{Key: "username", Value: f.Username})
	}
	if f.Email != "" {
		filter = append(filter, bson.E{Key: "email", Value: f.Email})
	}
	if f.Active != nil {
		filter = append(filter, bson.E{Key: "active", Value: *f.Active})
	}
	if f.IsAdmin != nil {
		filter = append(filter, bson.E{Key: "is_admin", Value: *f.IsAdmin})
	}
	return filter
}
