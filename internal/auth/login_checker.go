package auth

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	redisClient *redis.Client
}

func NewLoginChecker(redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		redisClient: redisClient,
	}
}

// OwnerOf resolves a session token to its owner id. An unknown or expired
// token yields "" and no error.
func (c *LoginChecker) OwnerOf(ctx context.Context, token string) (string, error) {
	ownerID, err := c.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return ownerID, nil
}
