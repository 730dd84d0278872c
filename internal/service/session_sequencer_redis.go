package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionSequencer asigna números de secuencia monótonos por sesión.
// El valor es informativo: 0 significa "sin secuencia" y nunca bloquea
// la persistencia de un mensaje.
type SessionSequencer interface {
	Next(ctx context.Context, sessionID string) int64
}

type redisSessionSequencer struct {
	client redisIncrer
	prefix string
}

type redisIncrer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// NewRedisSessionSequencer construye un secuenciador sobre INCR de redis.
func NewRedisSessionSequencer(client *redis.Client) SessionSequencer {
	if client == nil {
		return nil
	}
	return &redisSessionSequencer{
		client: client,
		prefix: "chat:seq:",
	}
}

// Next incrementa y devuelve el contador de la sesión. Ante cualquier fallo
// de redis devuelve 0 (fail-open): perder la secuencia es preferible a
// perder el mensaje.
func (s *redisSessionSequencer) Next(ctx context.Context, sessionID string) int64 {
	if s == nil || s.client == nil {
		return 0
	}
	key := strings.TrimSpace(sessionID)
	if key == "" {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	count, err := s.client.Incr(ctx, s.prefix+key).Result()
	if err != nil {
		return 0
	}
	return count
}
