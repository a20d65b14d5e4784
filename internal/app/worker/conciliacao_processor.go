// Pacote worker contém o processamento assíncrono: pedidos de conciliação vindos da fila Redis e a varredura periódica de reservas vencidas.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

// ConciliacaoProcessor aplica cada pedido da fila ao serviço de conciliação.
type ConciliacaoProcessor struct {
	conciliacao domain.ConciliacaoService
	logger      *slog.Logger
}

func NewConciliacaoProcessor(conciliacao domain.ConciliacaoService, logger *slog.Logger) *ConciliacaoProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConciliacaoProcessor{conciliacao: conciliacao, logger: logger}
}

func (p *ConciliacaoProcessor) Process(ctx context.Context, pedido domain.PedidoConciliacao) error {
	if pedido.PagamentoID == "" {
		metrics.ObserveFilaProcessado("invalid")
		return fmt.Errorf("worker: pedido sem pagamento")
	}

	status, err := p.conciliacao.Conciliar(ctx, pedido.PagamentoID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Pagamento apagado ou id inválido: não adianta reprocessar.
		metrics.ObserveFilaProcessado("not_found")
		p.logger.Warn("pedido de conciliacao para pagamento inexistente", "pagamento", pedido.PagamentoID)
		return nil
	case err != nil:
		metrics.ObserveFilaProcessado("error")
		return fmt.Errorf("worker: conciliar %s: %w", pedido.PagamentoID, err)
	}

	metrics.ObserveFilaProcessado(string(status))
	p.logger.Info("pedido de conciliacao processado", "pagamento", pedido.PagamentoID, "origem", pedido.Origem, "status", status)
	return nil
}
