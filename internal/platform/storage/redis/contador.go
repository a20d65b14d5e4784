package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// Contador mantém totais de números vendidos por campanha para a vitrine não precisar contar no banco.
type Contador struct {
	client *redis.Client
	prefix string
}

func NewContador(client *redis.Client, prefix string) *Contador {
	return &Contador{
		client: client,
		prefix: prefix,
	}
}

// incrementarExistente não recria a chave: depois de um flush o total precisa vir do banco, não do zero.
var incrementarExistente = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCRBY", KEYS[1], ARGV[1])
end
return false
`)

func (c *Contador) Incrementar(ctx context.Context, chave string, delta int64) (int64, error) {
	total, err := incrementarExistente.Run(ctx, c.client, []string{c.key(chave)}, delta).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis contador: incrementar %s: %w", chave, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("redis contador: incrementar %s: %w", chave, err)
	}
	return total, nil
}

// Definir sobrescreve o total, usado para ressincronizar a partir do banco.
func (c *Contador) Definir(ctx context.Context, chave string, valor int64) error {
	if err := c.client.Set(ctx, c.key(chave), valor, 0).Err(); err != nil {
		return fmt.Errorf("redis contador: definir %s: %w", chave, err)
	}
	return nil
}

func (c *Contador) ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error) {
	if len(chaves) == 0 {
		return map[string]int64{}, nil
	}

	keys := make([]string, len(chaves))
	for i, ch := range chaves {
		keys[i] = c.key(ch)
	}

	// MGET evita um round-trip por campanha na vitrine.
	valores, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis contador: mget: %w", err)
	}

	resultado := make(map[string]int64, len(chaves))
	for i, raw := range valores {
		if raw == nil {
			continue
		}

		switch v := raw.(type) {
		case string:
			num, convErr := strconv.ParseInt(v, 10, 64)
			if convErr != nil {
				return nil, fmt.Errorf("redis contador: valor invalido para %s: %w", chaves[i], convErr)
			}
			resultado[chaves[i]] = num
		case int64:
			resultado[chaves[i]] = v
		default:
			return nil, fmt.Errorf("redis contador: tipo inesperado %T", raw)
		}
	}

	return resultado, nil
}

func (c *Contador) key(chave string) string {
	if c.prefix == "" {
		return chave
	}
	return fmt.Sprintf("%s:%s", c.prefix, chave)
}

var _ domain.Contador = (*Contador)(nil)
