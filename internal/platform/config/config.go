// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config agrega todos os parâmetros necessários para API e worker.
type Config struct {
	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"rifa"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"rifa"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"rifa_pix"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FilaKeyPrefix     string `env:"REDIS_QUEUE_PREFIX" envDefault:"fila:conciliacao"`
	ContadorKeyPrefix string `env:"REDIS_COUNTER_PREFIX" envDefault:"contador"`

	RateLimitEnabled    bool          `env:"ANTIFRAUDE_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMaxActions int           `env:"ANTIFRAUDE_RATE_LIMIT_MAX" envDefault:"5"`
	RateLimitWindow     time.Duration `env:"ANTIFRAUDE_RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitKeyPrefix  string        `env:"ANTIFRAUDE_RATE_LIMIT_PREFIX" envDefault:"ratelimit"`

	GatewayBaseURL   string        `env:"GATEWAY_BASE_URL" envDefault:"https://api.blackcatpagamentos.com/v1"`
	GatewayPublicKey string        `env:"GATEWAY_PUBLIC_KEY"`
	GatewaySecretKey string        `env:"GATEWAY_SECRET_KEY"`
	GatewayTimeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`
	WebhookToken     string        `env:"GATEWAY_WEBHOOK_TOKEN"`

	ReservaExpiracao time.Duration `env:"CHECKOUT_RESERVA_EXPIRACAO" envDefault:"10m"`

	JWTSecret     string        `env:"ADMIN_JWT_SECRET"`
	JWTTTL        time.Duration `env:"ADMIN_JWT_TTL" envDefault:"8h"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`

	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatchSize    int           `env:"SWEEP_BATCH_SIZE" envDefault:"100"`
	SweepLockKey      string        `env:"SWEEP_LOCK_KEY" envDefault:"lock:varredura-expirados"`
	SweepGatewayGrace time.Duration `env:"SWEEP_GATEWAY_GRACE" envDefault:"24h"`

	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	WorkerMetricsAddress string `env:"WORKER_METRICS_ADDRESS" envDefault:":9090"`
}

func Load() (Config, error) {
	// .env é opcional; em Docker/K8s as variáveis chegam direto pelo ambiente.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.ReservaExpiracao <= 0 {
		return Config{}, fmt.Errorf("config: CHECKOUT_RESERVA_EXPIRACAO deve ser positivo")
	}
	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}
