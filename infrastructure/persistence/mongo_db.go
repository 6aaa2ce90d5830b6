package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"benchly/infrastructure/configuration"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoURI builds a connection string from the mongo section. Credentials are
// optional for local servers.
func MongoURI(cfg configuration.Db) string {
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), Path: "/"}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
		u.RawQuery = url.Values{"authSource": {"admin"}}.Encode()
	}
	return u.String()
}

// NewMongoDB connects and pings. The caller owns Disconnect.
func NewMongoDB(ctx context.Context, cfg configuration.Db) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(MongoURI(cfg)).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(cfg.Name), nil
}
