package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

const ceremonyTTL = 5 * time.Minute

type IRedisService interface {
	StoreCeremony(ctx context.Context, ceremony *Ceremony) error
	// TakeCeremony returns the ceremony and removes it; a challenge is single use.
	TakeCeremony(ctx context.Context, ceremonyID string) (*Ceremony, error)
	DeleteCeremony(ctx context.Context, ceremonyID string) error
}

// Ceremony is the server side state of an issued WebAuthn challenge.
type Ceremony struct {
	ID             string                `json:"id"`
	RelyingParty   RelyingParty          `json:"relyingParty"`
	Username       string                `json:"username,omitempty"`
	PendingUserID  string                `json:"pendingUserId,omitempty"`
	Registration   *webauthn.SessionData `json:"registration,omitempty"`
	Authentication *webauthn.SessionData `json:"authentication,omitempty"`
}

type RedisService struct {
	rdb *redis.Client
}

func NewRedisService(rdb *redis.Client) *RedisService {
	return &RedisService{rdb: rdb}
}

func ceremonyKey(id string) string {
	return fmt.Sprintf("webauthn:%s", id)
}

func (s *RedisService) StoreCeremony(ctx context.Context, ceremony *Ceremony) error {
	data, err := json.Marshal(ceremony)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ceremonyKey(ceremony.ID), data, ceremonyTTL).Err()
}

func (s *RedisService) TakeCeremony(ctx context.Context, ceremonyID string) (*Ceremony, error) {
	if ceremonyID == "" {
		return nil, ErrChallengeNotFound
	}
	// GETDEL so two requests racing on one challenge cannot both read it.
	val, err := s.rdb.GetDel(ctx, ceremonyKey(ceremonyID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	var ceremony Ceremony
	if err := json.Unmarshal([]byte(val), &ceremony); err != nil {
		return nil, err
	}
	return &ceremony, nil
}

func (s *RedisService) DeleteCeremony(ctx context.Context, ceremonyID string) error {
	return s.rdb.Del(ctx, ceremonyKey(ceremonyID)).Err()
}
