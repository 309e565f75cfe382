// Package mongo stores users and activities in the "users" and "activities"
// MongoDB collections.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"elite-app/internal/repository"
)

const (
	usersCollection      = "users"
	activitiesCollection = "activities"
)

// Connect dials uri and verifies the deployment answers a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Stores bundles the mongo-backed repositories of one database.
type Stores struct {
	Users      repository.UserRepository
	Activities repository.ActivityRepository
}

// NewStores builds the repositories and ensures their indexes exist.
func NewStores(ctx context.Context, db *mongo.Database) (*Stores, error) {
	stores := &Stores{
		Users:      NewUserRepository(db),
		Activities: NewActivityRepository(db),
	}
	if err := stores.Users.Init(ctx); err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := stores.Activities.Init(ctx); err != nil {
		return nil, fmt.Errorf("init activity repository: %w", err)
	}
	return stores, nil
}
