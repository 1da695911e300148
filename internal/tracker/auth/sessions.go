package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleVisitor Role = "VISITOR" // somente leitura
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Sessions guarda tokens bearer no Redis com TTL. Token expirado some sozinho
// e força novo login.
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{rdb: rdb, ttl: ttl}
}

func key(token string) string { return "session:" + token }

// Issue emite um token opaco para o papel informado.
func (s *Sessions) Issue(ctx context.Context, role Role) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, key(token), string(role), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Role resolve o papel de um token. Token desconhecido ou expirado retorna
// ErrInvalidToken.
func (s *Sessions) Role(ctx context.Context, token string) (Role, error) {
	val, err := s.rdb.Get(ctx, key(token)).Result()
	if err == redis.Nil {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return Role(val), nil
}

// Revoke invalida um token imediatamente.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, key(token)).Err()
}
