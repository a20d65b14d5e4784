// Pacote antifraude limita tentativas de checkout suspeitas (rate limit Redis e modo noop).
package antifraude

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

var ErrRateLimitExceeded = errors.New("limite de tentativas de compra atingido")

// RedisRateLimiter limita checkouts por campanha em janelas fixas, contando IP e CPF separadamente.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Validar(ctx context.Context, tentativa domain.TentativaCompra) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Configurações inválidas caem no modo permissivo.
		return nil
	}

	for _, key := range r.buildKeys(tentativa) {
		count, err := r.client.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("antifraude: falha ao incrementar chave: %w", err)
		}

		if count == 1 {
			if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
				return fmt.Errorf("antifraude: falha ao definir expiracao: %w", err)
			}
		}

		if int(count) > r.limit {
			return ErrRateLimitExceeded
		}
	}

	return nil
}

// buildKeys gera uma chave por dimensão preenchida; IP e CPF nunca vão em claro para o Redis.
func (r *RedisRateLimiter) buildKeys(t domain.TentativaCompra) []string {
	var keys []string
	if t.OrigemIP != "" {
		keys = append(keys, r.hashKey("ip", string(t.CampanhaID), t.OrigemIP))
	}
	if t.CPF != "" {
		keys = append(keys, r.hashKey("cpf", string(t.CampanhaID), t.CPF))
	}
	return keys
}

func (r *RedisRateLimiter) hashKey(dimensao, campanha, valor string) string {
	hash := sha256.Sum256([]byte(campanha + "|" + valor))
	return fmt.Sprintf("%s:%s:%s", r.keyPrefix, dimensao, hex.EncodeToString(hash[:]))
}

var _ domain.Antifraude = (*RedisRateLimiter)(nil)
