package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "flexfit-session||"
	tokensSetKey     = "flexfit-sessions"
	tokenBytes       = 32
)

var ErrWrongCredentials = errors.New("wrong credentials")

type usersRepo interface {
	GetByUsername(ctx context.Context, username string) (User, error)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginSession struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service issues and revokes session tokens. A session is a redis key
// holding the owner id, expiring after ttl; the tokens set lets
// ScanAndClean find stale entries.
type Service struct {
	users       usersRepo
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	users usersRepo,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          users,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *Service) Login(ctx context.Context, credentials Credentials, createdAt time.Time) (LoginSession, error) {
	user, err := as.users.GetByUsername(ctx, credentials.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginSession{}, ErrWrongCredentials
		}
		return LoginSession{}, fmt.Errorf("get user: %w", err)
	}
	if !pkg.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		return LoginSession{}, ErrWrongCredentials
	}

	token, err := as.RandStringFunc(tokenBytes)
	if err != nil {
		return LoginSession{}, fmt.Errorf("generate token: %w", err)
	}

	sessionKey := sessionKeyPrefix + token
	if err := as.redisClient.Set(ctx, sessionKey, user.ID, as.ttl).Err(); err != nil {
		return LoginSession{}, err
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return LoginSession{}, err
	}

	return LoginSession{
		Token:     token,
		OwnerID:   user.ID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(as.ttl),
	}, nil
}

// Logout revokes the token; it reports false when there was no such session.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	deleted, err := as.redisClient.Del(ctx, sessionKey).Result()
	if err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// ScanAndClean drops tokens whose session key has already expired from the
// tokens set, and returns how many were dropped.
func (as *Service) ScanAndClean(ctx context.Context) int {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return 0
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return 0
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	cleaned := 0
	for _, token := range sessionTokens {
		exists, err := as.redisClient.Exists(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}
		if exists > 0 {
			continue
		}

		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token: %s", err)
			continue
		}
		cleaned++
	}

	log.Infof("auth service, scan and clean done, %d stale tokens removed", cleaned)
	return cleaned
}
