package antifraude

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

func TestRedisRateLimiterRespectsLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisRateLimiter(client, 2, time.Minute, "rl")

	tentativa := domain.TentativaCompra{
		CampanhaID: "campanha-1",
		OrigemIP:   "200.1.1.1",
		CPF:        "12345678901",
	}

	ctx := context.Background()
	if err := limiter.Validar(ctx, tentativa); err != nil {
		t.Fatalf("primeira tentativa deveria ser aceita, erro: %v", err)
	}
	if err := limiter.Validar(ctx, tentativa); err != nil {
		t.Fatalf("segunda tentativa deveria ser aceita, erro: %v", err)
	}

	if err := limiter.Validar(ctx, tentativa); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("terceira tentativa deveria ser bloqueada, recebeu: %v", err)
	}

	for _, key := range limiter.buildKeys(tentativa) {
		if ttl := mr.TTL(key); ttl <= 0 {
			t.Fatalf("esperava TTL positivo para %s, veio %v", key, ttl)
		}
	}
}

func TestRedisRateLimiterResetsAfterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	window := 30 * time.Second
	limiter := NewRedisRateLimiter(client, 1, window, "rl")

	tentativa := domain.TentativaCompra{CampanhaID: "campanha-2", OrigemIP: "200.2.2.2"}

	ctx := context.Background()
	if err := limiter.Validar(ctx, tentativa); err != nil {
		t.Fatalf("tentativa inicial deveria ser aceita: %v", err)
	}
	if err := limiter.Validar(ctx, tentativa); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("segunda tentativa antes da janela deveria falhar: %v", err)
	}

	mr.FastForward(window + time.Second)

	if err := limiter.Validar(ctx, tentativa); err != nil {
		t.Fatalf("apos expirar janela, tentativa deveria ser aceita: %v", err)
	}
}

func TestRedisRateLimiterBlocksSameCPFFromDifferentIPs(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisRateLimiter(client, 1, time.Minute, "rl")

	ctx := context.Background()
	primeira := domain.TentativaCompra{CampanhaID: "campanha-3", OrigemIP: "10.0.0.1", CPF: "98765432100"}
	if err := limiter.Validar(ctx, primeira); err != nil {
		t.Fatalf("primeira tentativa deveria ser aceita: %v", err)
	}

	trocaIP := domain.TentativaCompra{CampanhaID: "campanha-3", OrigemIP: "10.0.0.2", CPF: "98765432100"}
	if err := limiter.Validar(ctx, trocaIP); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("mesmo CPF por outro IP deveria ser bloqueado, recebeu: %v", err)
	}

	outraCampanha := domain.TentativaCompra{CampanhaID: "campanha-4", OrigemIP: "10.0.0.1", CPF: "98765432100"}
	if err := limiter.Validar(ctx, outraCampanha); err != nil {
		t.Fatalf("outra campanha tem janela propria: %v", err)
	}
}

func TestRedisRateLimiterKeysNaoExpoemDados(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 1, time.Minute, "")

	keys := limiter.buildKeys(domain.TentativaCompra{CampanhaID: "c", OrigemIP: "1.2.3.4", CPF: "12345678901"})

	if len(keys) != 2 {
		t.Fatalf("esperava 2 chaves, veio %d", len(keys))
	}
	for _, k := range keys {
		if strings.Contains(k, "1.2.3.4") || strings.Contains(k, "12345678901") {
			t.Fatalf("chave expoe dado sensivel: %s", k)
		}
	}
}

func TestRedisRateLimiterSemClienteEhPermissivo(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 1, time.Minute, "rl")

	if err := limiter.Validar(context.Background(), domain.TentativaCompra{OrigemIP: "1.1.1.1"}); err != nil {
		t.Fatalf("sem cliente deveria aceitar: %v", err)
	}
}
