package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/models"
)

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewProfileCache caches user profiles in Redis under a short TTL so that
// repeated profile fetches skip DynamoDB. All failures are logged and
// swallowed.
func NewProfileCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) ProfileCache {
	return &redisProfileCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisProfileCache) key(email string) string {
	return fmt.Sprintf("profile:%s", email)
}

func (c *redisProfileCache) Get(ctx context.Context, email string) (*models.User, bool) {
	dataJSON, err := c.client.Get(ctx, c.key(email)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Debug("Profile cache read failed")
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal([]byte(dataJSON), &user); err != nil {
		c.logger.WithError(err).Warn("Failed to unmarshal cached profile")
		return nil, false
	}

	return &user, true
}

func (c *redisProfileCache) Set(ctx context.Context, user *models.User) {
	dataJSON, err := json.Marshal(user)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal profile for cache")
		return
	}

	if err := c.client.Set(ctx, c.key(user.Email), dataJSON, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Debug("Profile cache write failed")
	}
}
