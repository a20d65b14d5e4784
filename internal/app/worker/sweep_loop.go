package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcelojr/rifa-pix/internal/app/settlement"
)

type varredor interface {
	Varrer(ctx context.Context) (settlement.ResultadoVarredura, error)
}

// ExecutarVarreduras roda uma varredura imediata e depois uma a cada intervalo, até o ctx acabar.
func ExecutarVarreduras(ctx context.Context, v varredor, intervalo time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if intervalo <= 0 {
		intervalo = time.Minute
	}

	rodar := func() {
		res, err := v.Varrer(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Error("varredura de reservas falhou", "err", err)
		case res.Pulada:
			logger.Debug("varredura pulada, trava com outra instancia")
		}
	}

	rodar()
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rodar()
		}
	}
}
