package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 30 * 24 * time.Hour
	sessionKeyPrefix = "volume-tracker-session||"
	tokensSetKey     = "volume-tracker-sessions"
	tokenLength      = 35
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrExpired      = errors.New("session expired")
	ErrInvalidEmail = errors.New("session email is required")
)

type Session struct {
	User fitness.UserSession `json:"user"`
	// Device pairs the session with one companion, empty when none is paired.
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service keeps signed in user sessions in redis so they survive restarts.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	NowFunc        func() time.Time
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
		NowFunc:        time.Now,
	}
}

func (s *Service) Login(ctx context.Context, user fitness.UserSession, device string) (string, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return "", ErrInvalidEmail
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	sessionBytes, err := json.Marshal(Session{
		User:      user,
		Device:    device,
		CreatedAt: s.NowFunc().UTC().Truncate(time.Second),
	})
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Set(ctx, sessionKey, string(sessionBytes), s.ttl).Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Get rehydrates the session behind a token.
func (s *Service) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sess := &Session{}
	if err := json.Unmarshal([]byte(val), sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if s.NowFunc().Sub(sess.CreatedAt) > s.ttl {
		return nil, ErrExpired
	}

	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! session service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("=> session service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> session service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		_, err := s.Get(ctx, token)
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
			toRemove = append(toRemove, token)
		case err != nil:
			log.Errorf("=> session service, scan and clean token %s: %s", token, err)
		}
	}

	for _, token := range toRemove {
		log.Debugf("=>\twill clean the session with token: %s", token)
		if _, err := s.Logout(ctx, token); err != nil {
			log.Errorf("=> session service, clean token %s: %s", token, err)
		}
	}
}
