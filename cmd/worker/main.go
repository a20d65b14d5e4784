// Worker assíncrono: consome pedidos de conciliação da fila e varre reservas vencidas, expondo métricas.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/rifa-pix/internal/app/settlement"
	"github.com/marcelojr/rifa-pix/internal/app/worker"
	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/clock"
	"github.com/marcelojr/rifa-pix/internal/platform/config"
	"github.com/marcelojr/rifa-pix/internal/platform/gateway/blackcat"
	"github.com/marcelojr/rifa-pix/internal/platform/health"
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
		// Evitamos divergência de schema rodando a mesma migração condicional da API.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis é obrigatório aqui: fila, contador e trava da varredura vivem na mesma instância.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	pagamentoRepo := postgresstorage.NewPagamentoRepository(db)
	numeroRepo := postgresstorage.NewNumeroRepository(db)
	transactor := postgresstorage.NewTransactor(db)
	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKeyPrefix)
	trava := redisstorage.NewTrava(redisClient)
	clockSystem := clock.NewSystemClock()
	checker := health.NewChecker(sqlDB, redisClient)

	gateway := blackcat.NewClient(blackcat.Config{
		BaseURL:   cfg.GatewayBaseURL,
		PublicKey: cfg.GatewayPublicKey,
		SecretKey: cfg.GatewaySecretKey,
		Timeout:   cfg.GatewayTimeout,
	}, logger.L())

	reconciler := settlement.NewReconciler(pagamentoRepo, numeroRepo, transactor, gateway, contador, fila, clockSystem, logger.L()).
		ComCarenciaGateway(cfg.SweepGatewayGrace)
	varredor := settlement.NewVarredor(pagamentoRepo, reconciler, trava, cfg.SweepLockKey, cfg.SweepInterval, cfg.SweepBatchSize, clockSystem, logger.L())
	processor := worker.NewConciliacaoProcessor(reconciler, logger.L())

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			// Metrics expõe observabilidade enquanto a goroutine principal consome a fila.
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", checker.LiveHandler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.ExecutarVarreduras(ctx, varredor, cfg.SweepInterval, logger.L())
	}()

	logger.Info("worker iniciado, aguardando pedidos de conciliacao")
	err = fila.ConsumirConciliacoes(ctx, func(ctx context.Context, pedido domain.PedidoConciliacao) error {
		// Erros ficam no log; a varredura recupera o pagamento quando a reserva vencer.
		if err := processor.Process(ctx, pedido); err != nil {
			logger.Error("erro ao processar pedido de conciliacao", "pagamento", pedido.PagamentoID, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	stop()
	wg.Wait()
	logger.Info("worker finalizado")
}
