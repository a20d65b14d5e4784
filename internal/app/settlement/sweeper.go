package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

type conciliador interface {
	Conciliar(ctx context.Context, id domain.PagamentoID) (domain.StatusPagamento, error)
}

// Varredor concilia reservas vencidas que nenhum cliente voltou a consultar.
type Varredor struct {
	pagamentos  domain.PagamentoRepository
	conciliador conciliador
	trava       domain.Trava
	chave       string
	ttl         time.Duration
	lote        int
	clock       domain.Clock
	logger      *slog.Logger
}

func NewVarredor(
	pagamentos domain.PagamentoRepository,
	conc conciliador,
	trava domain.Trava,
	chave string,
	ttl time.Duration,
	lote int,
	clock domain.Clock,
	logger *slog.Logger,
) *Varredor {
	if lote <= 0 {
		lote = 100
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Varredor{
		pagamentos:  pagamentos,
		conciliador: conc,
		trava:       trava,
		chave:       chave,
		ttl:         ttl,
		lote:        lote,
		clock:       clock,
		logger:      logger,
	}
}

type ResultadoVarredura struct {
	Analisados int
	Cancelados int
	Pagos      int
	Falhas     int
	// Pulada indica que outra instância segurava a trava.
	Pulada bool
}

// Varrer processa um lote por chamada; pagamentos com erro no gateway ficam para a próxima rodada.
func (v *Varredor) Varrer(ctx context.Context) (ResultadoVarredura, error) {
	var res ResultadoVarredura

	if v.trava != nil {
		token, ok, err := v.trava.TryLock(ctx, v.chave, v.ttl)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Pulada = true
			return res, nil
		}
		defer func() {
			if err := v.trava.Release(context.WithoutCancel(ctx), v.chave, token); err != nil {
				v.logger.Warn("falha ao liberar trava da varredura", "err", err)
			}
		}()
	}

	expirados, err := v.pagamentos.ListAbertosExpirados(ctx, v.clock.Agora(), v.lote)
	if err != nil {
		return res, err
	}

	for _, p := range expirados {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Analisados++
		status, err := v.conciliador.Conciliar(ctx, p.ID)
		if err != nil {
			res.Falhas++
			// Sem registrar a falha, o mesmo pagamento voltaria na cabeça do próximo lote.
			if errReg := v.pagamentos.RegistrarTentativa(ctx, p.ID, v.clock.Agora()); errReg != nil {
				v.logger.Warn("falha ao registrar tentativa de conciliacao", "pagamento", p.ID, "err", errReg)
			}
			nivel := slog.LevelError
			if errors.Is(err, domain.ErrGateway) {
				nivel = slog.LevelWarn
			}
			v.logger.Log(ctx, nivel, "falha ao conciliar reserva vencida", "pagamento", p.ID, "err", err)
			continue
		}
		switch status {
		case domain.PagamentoCancelado:
			res.Cancelados++
		case domain.PagamentoPago:
			res.Pagos++
		case domain.PagamentoPendente, domain.PagamentoAguardandoConfirmacao:
		}
	}

	metrics.AddVarredura(res.Cancelados)
	if res.Analisados > 0 {
		v.logger.Info("varredura concluida", "analisados", res.Analisados, "cancelados", res.Cancelados, "pagos", res.Pagos, "falhas", res.Falhas)
	}
	return res, nil
}
