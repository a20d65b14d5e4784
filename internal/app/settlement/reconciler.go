// Pacote settlement confirma ou libera reservas conforme o estado da cobrança no gateway.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/rifa-pix/internal/app/campaigns"
	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

const OrigemWebhook = "webhook"

// CarenciaGatewayPadrao é quanto tempo após o vencimento toleramos o gateway sem resposta antes de liberar os números.
const CarenciaGatewayPadrao = 24 * time.Hour

// Reconciler implementa domain.ConciliacaoService.
type Reconciler struct {
	pagamentos domain.PagamentoRepository
	numeros    domain.NumeroRepository
	tx         domain.Transactor
	gateway    domain.GatewayPagamento
	contador   domain.Contador
	fila       domain.Fila
	clock      domain.Clock
	logger     *slog.Logger
	carencia   time.Duration
}

func NewReconciler(
	pagamentos domain.PagamentoRepository,
	numeros domain.NumeroRepository,
	tx domain.Transactor,
	gateway domain.GatewayPagamento,
	contador domain.Contador,
	fila domain.Fila,
	clock domain.Clock,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		pagamentos: pagamentos,
		numeros:    numeros,
		tx:         tx,
		gateway:    gateway,
		contador:   contador,
		fila:       fila,
		clock:      clock,
		logger:     logger,
		carencia:   CarenciaGatewayPadrao,
	}
}

// ComCarenciaGateway troca a carência após o vencimento; zero ou negativo nunca cancela sem resposta do gateway.
func (r *Reconciler) ComCarenciaGateway(d time.Duration) *Reconciler {
	r.carencia = d
	return r
}

// Conciliar é idempotente: pagamentos finalizados voltam o status atual sem consultar o gateway.
func (r *Reconciler) Conciliar(ctx context.Context, id domain.PagamentoID) (domain.StatusPagamento, error) {
	pagamento, err := r.pagamentos.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("settlement: pagamento %s: %w", id, err)
	}
	if pagamento.Status.Terminal() {
		metrics.ObserveConciliacao("terminal")
		return pagamento.Status, nil
	}

	statusCobranca, err := r.gateway.StatusCobranca(ctx, pagamento.CobrancaID)
	if err != nil {
		agora := r.clock.Agora()
		if r.carencia > 0 && agora.After(pagamento.ExpiraEm.Add(r.carencia)) {
			// A cobrança PIX já venceu há muito; não seguramos os números para sempre.
			r.logger.Warn("gateway sem resposta apos a carencia, cancelando reserva", "pagamento", id, "cobranca", pagamento.CobrancaID, "err", err)
			return r.cancelar(ctx, pagamento, agora, "gateway_sem_resposta")
		}
		metrics.ObserveConciliacao("gateway_error")
		if !errors.Is(err, domain.ErrGateway) {
			err = fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return pagamento.Status, fmt.Errorf("settlement: consultar cobranca %s: %w", pagamento.CobrancaID, err)
	}

	agora := r.clock.Agora()
	switch statusCobranca {
	case domain.CobrancaPaga:
		return r.confirmar(ctx, pagamento, agora)
	case domain.CobrancaExpirada, domain.CobrancaCancelada:
		return r.cancelar(ctx, pagamento, agora, string(statusCobranca))
	case domain.CobrancaPendente:
		if agora.After(pagamento.ExpiraEm) {
			return r.cancelar(ctx, pagamento, agora, "reserva_expirada")
		}
		metrics.ObserveConciliacao("pending")
		return pagamento.Status, nil
	}

	r.logger.Warn("status de cobranca desconhecido", "pagamento", id, "status", statusCobranca)
	metrics.ObserveConciliacao("unknown")
	return pagamento.Status, nil
}

func (r *Reconciler) confirmar(ctx context.Context, p domain.Pagamento, agora time.Time) (domain.StatusPagamento, error) {
	var mudou bool
	var marcados int64
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := r.pagamentos.TransitarStatus(ctx, p.ID, domain.OrigensPara(domain.PagamentoPago), domain.PagamentoPago, agora)
		if err != nil || !ok {
			return err
		}
		mudou = true
		marcados, err = r.numeros.MarcarPagos(ctx, p.ID)
		return err
	})
	if err != nil {
		return p.Status, fmt.Errorf("settlement: confirmar %s: %w", p.ID, err)
	}
	if !mudou {
		return r.statusAtual(ctx, p)
	}

	if marcados != int64(p.Quantidade) {
		r.logger.Warn("quantidade de numeros pagos diverge do pagamento", "pagamento", p.ID, "esperado", p.Quantidade, "marcados", marcados)
	}
	if r.contador != nil {
		_, err := r.contador.Incrementar(ctx, campaigns.CounterKeyVendidos(p.CampanhaID), marcados)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Chave ausente: a próxima leitura da vitrine reconta no banco.
		case err != nil:
			// O banco já está correto; o contador se recupera na próxima sincronização.
			r.logger.Warn("falha ao incrementar vendidos", "campanha", p.CampanhaID, "err", err)
		}
	}

	metrics.ObserveConciliacao("paid")
	r.logger.Info("pagamento confirmado", "pagamento", p.ID, "campanha", p.CampanhaID, "numeros", marcados)
	return domain.PagamentoPago, nil
}

func (r *Reconciler) cancelar(ctx context.Context, p domain.Pagamento, agora time.Time, motivo string) (domain.StatusPagamento, error) {
	var mudou bool
	var liberados int64
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := r.pagamentos.TransitarStatus(ctx, p.ID, domain.OrigensPara(domain.PagamentoCancelado), domain.PagamentoCancelado, agora)
		if err != nil || !ok {
			return err
		}
		mudou = true
		liberados, err = r.numeros.Liberar(ctx, p.ID)
		return err
	})
	if err != nil {
		return p.Status, fmt.Errorf("settlement: cancelar %s: %w", p.ID, err)
	}
	if !mudou {
		return r.statusAtual(ctx, p)
	}

	metrics.ObserveConciliacao("cancelled")
	r.logger.Info("pagamento cancelado", "pagamento", p.ID, "campanha", p.CampanhaID, "motivo", motivo, "numeros_liberados", liberados)
	return domain.PagamentoCancelado, nil
}

// statusAtual cobre a corrida em que outra conciliação finalizou o pagamento antes de nós.
func (r *Reconciler) statusAtual(ctx context.Context, p domain.Pagamento) (domain.StatusPagamento, error) {
	atual, err := r.pagamentos.FindByID(ctx, p.ID)
	if err != nil {
		return p.Status, fmt.Errorf("settlement: reler %s: %w", p.ID, err)
	}
	metrics.ObserveConciliacao("concurrent")
	return atual.Status, nil
}

// Notificar trata o aviso do gateway; o corpo do webhook nunca define o status, só dispara a conciliação.
func (r *Reconciler) Notificar(ctx context.Context, cobrancaID string) error {
	pagamento, err := r.pagamentos.FindByCobrancaID(ctx, cobrancaID)
	if err != nil {
		return fmt.Errorf("settlement: notificar %s: %w", cobrancaID, err)
	}
	if pagamento.Status.Terminal() {
		return nil
	}

	agora := r.clock.Agora()
	if pagamento.Status == domain.PagamentoPendente {
		origens := []domain.StatusPagamento{domain.PagamentoPendente}
		if _, err := r.pagamentos.TransitarStatus(ctx, pagamento.ID, origens, domain.PagamentoAguardandoConfirmacao, agora); err != nil {
			return fmt.Errorf("settlement: notificar %s: %w", cobrancaID, err)
		}
	}

	if r.fila == nil {
		_, err := r.Conciliar(ctx, pagamento.ID)
		return err
	}

	pedido := domain.PedidoConciliacao{PagamentoID: pagamento.ID, Origem: OrigemWebhook, RecebidoEm: agora}
	if err := r.fila.PublicarConciliacao(ctx, pedido); err != nil {
		return fmt.Errorf("settlement: enfileirar %s: %w", pagamento.ID, err)
	}
	return nil
}

var _ domain.ConciliacaoService = (*Reconciler)(nil)
