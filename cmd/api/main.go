// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/rifa-pix/internal/app/auth"
	"github.com/marcelojr/rifa-pix/internal/app/campaigns"
	"github.com/marcelojr/rifa-pix/internal/app/checkout"
	"github.com/marcelojr/rifa-pix/internal/app/httpapi"
	"github.com/marcelojr/rifa-pix/internal/app/settlement"
	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/antifraude"
	"github.com/marcelojr/rifa-pix/internal/platform/clock"
	"github.com/marcelojr/rifa-pix/internal/platform/config"
	"github.com/marcelojr/rifa-pix/internal/platform/gateway/blackcat"
	"github.com/marcelojr/rifa-pix/internal/platform/health"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
	"github.com/marcelojr/rifa-pix/internal/platform/logger"
	"github.com/marcelojr/rifa-pix/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/rifa-pix/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/rifa-pix/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis guarda a fila de conciliação, os contadores de vendidos e o antifraude.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	campanhaRepo := postgresstorage.NewCampanhaRepository(db)
	compradorRepo := postgresstorage.NewCompradorRepository(db)
	pagamentoRepo := postgresstorage.NewPagamentoRepository(db)
	numeroRepo := postgresstorage.NewNumeroRepository(db)
	adminRepo := postgresstorage.NewAdminRepository(db)
	transactor := postgresstorage.NewTransactor(db)
	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix)
	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	gateway := blackcat.NewClient(blackcat.Config{
		BaseURL:   cfg.GatewayBaseURL,
		PublicKey: cfg.GatewayPublicKey,
		SecretKey: cfg.GatewaySecretKey,
		Timeout:   cfg.GatewayTimeout,
	}, logger.L())

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow, cfg.RateLimitKeyPrefix)
	}

	checkoutSvc := checkout.NewService(checkout.Dependencias{
		Campanhas:   campanhaRepo,
		Compradores: compradorRepo,
		Pagamentos:  pagamentoRepo,
		Numeros:     numeroRepo,
		Tx:          transactor,
		Gateway:     gateway,
		Antifraude:  antifraudeSvc,
		Clock:       clockSystem,
		IDs:         idGen,
		Logger:      logger.L(),
		Expiracao:   cfg.ReservaExpiracao,
	})
	reconciler := settlement.NewReconciler(pagamentoRepo, numeroRepo, transactor, gateway, contador, fila, clockSystem, logger.L()).
		ComCarenciaGateway(cfg.SweepGatewayGrace)
	campanhaSvc := campaigns.NewService(campanhaRepo, numeroRepo, contador, clockSystem, idGen, logger.L())

	authSvc, err := auth.NewService(adminRepo, cfg.JWTSecret, cfg.JWTTTL, clockSystem, idGen, logger.L())
	if err != nil {
		logger.Fatal("ADMIN_JWT_SECRET obrigatorio", "err", err)
	}
	if _, err := authSvc.SemearAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("falha ao semear admin", "err", err)
	}

	// Contador em Redis pode ter sido perdido; o banco é a fonte da verdade.
	if err := campanhaSvc.SincronizarVendidos(ctx); err != nil {
		logger.Warn("falha ao sincronizar vendidos", "err", err)
	}

	api := httpapi.New(httpapi.Dependencias{
		Checkout:     checkoutSvc,
		Conciliacao:  reconciler,
		Campanhas:    campanhaSvc,
		Auth:         authSvc,
		WebhookToken: cfg.WebhookToken,
		Logger:       logger.L(),
	})
	if cfg.WebhookToken == "" {
		logger.Warn("GATEWAY_WEBHOOK_TOKEN vazio, webhook desabilitado")
	}

	checker := health.NewChecker(sqlDB, redisClient)
	router := api.Router()
	router.Get("/readyz", checker.ReadyHandler())
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
