package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

const travaReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Trava garante que só uma réplica do worker rode a varredura de reservas vencidas por vez.
type Trava struct {
	client *redis.Client
	script *redis.Script
}

func NewTrava(client *redis.Client) *Trava {
	return &Trava{
		client: client,
		script: redis.NewScript(travaReleaseScript),
	}
}

func (t *Trava) TryLock(ctx context.Context, chave string, ttl time.Duration) (string, bool, error) {
	if chave == "" {
		return "", false, errors.New("redis trava: chave vazia")
	}
	if ttl <= 0 {
		return "", false, errors.New("redis trava: ttl deve ser positivo")
	}

	token := uuid.NewString()
	ok, err := t.client.SetNX(ctx, chave, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis trava: setnx %s: %w", chave, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release só apaga a chave se o token ainda for o nosso; uma trava expirada e retomada por outro fica intacta.
func (t *Trava) Release(ctx context.Context, chave, token string) error {
	if chave == "" || token == "" {
		return nil
	}
	if err := t.script.Run(ctx, t.client, []string{chave}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis trava: liberar %s: %w", chave, err)
	}
	return nil
}

var _ domain.Trava = (*Trava)(nil)
