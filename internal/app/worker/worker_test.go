package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/marcelojr/rifa-pix/internal/app/settlement"
	"github.com/marcelojr/rifa-pix/internal/domain"
)

func TestConciliacaoProcessorProcess(t *testing.T) {
	conc := &conciliacaoFake{status: domain.PagamentoPago}
	processor := NewConciliacaoProcessor(conc, nil)

	pedido := domain.PedidoConciliacao{PagamentoID: "pag-1", Origem: settlement.OrigemWebhook}
	if err := processor.Process(context.Background(), pedido); err != nil {
		t.Fatalf("Process retornou erro inesperado: %v", err)
	}

	if len(conc.ids) != 1 || conc.ids[0] != "pag-1" {
		t.Fatalf("esperava conciliar pag-1, conciliou %v", conc.ids)
	}
}

func TestConciliacaoProcessorIgnoraPagamentoInexistente(t *testing.T) {
	conc := &conciliacaoFake{err: fmt.Errorf("settlement: pagamento x: %w", domain.ErrNotFound)}
	processor := NewConciliacaoProcessor(conc, nil)

	if err := processor.Process(context.Background(), domain.PedidoConciliacao{PagamentoID: "x"}); err != nil {
		t.Fatalf("pagamento inexistente nao deveria gerar erro, veio %v", err)
	}
}

func TestConciliacaoProcessorPropagaFalhaDoGateway(t *testing.T) {
	conc := &conciliacaoFake{status: domain.PagamentoAguardandoConfirmacao, err: domain.ErrGateway}
	processor := NewConciliacaoProcessor(conc, nil)

	err := processor.Process(context.Background(), domain.PedidoConciliacao{PagamentoID: "pag-1"})
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("esperava ErrGateway, veio %v", err)
	}
}

func TestConciliacaoProcessorRecusaPedidoVazio(t *testing.T) {
	conc := &conciliacaoFake{}
	processor := NewConciliacaoProcessor(conc, nil)

	if err := processor.Process(context.Background(), domain.PedidoConciliacao{}); err == nil {
		t.Fatal("pedido sem pagamento deveria falhar")
	}
	if len(conc.ids) != 0 {
		t.Fatal("nao deveria chamar a conciliacao")
	}
}

func TestExecutarVarredurasRodaAteOContextoAcabar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := &varredorFake{alvo: 3, cancel: cancel}

	done := make(chan struct{})
	go func() {
		ExecutarVarreduras(ctx, v, time.Millisecond, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop de varredura nao terminou apos cancelamento")
	}

	if v.total() < 3 {
		t.Fatalf("esperava ao menos 3 varreduras, teve %d", v.total())
	}
}

type conciliacaoFake struct {
	status domain.StatusPagamento
	err    error
	ids    []domain.PagamentoID
}

func (c *conciliacaoFake) Conciliar(_ context.Context, id domain.PagamentoID) (domain.StatusPagamento, error) {
	c.ids = append(c.ids, id)
	return c.status, c.err
}

func (c *conciliacaoFake) Notificar(context.Context, string) error {
	return nil
}

type varredorFake struct {
	mu     sync.Mutex
	n      int
	alvo   int
	cancel context.CancelFunc
}

func (v *varredorFake) Varrer(context.Context) (settlement.ResultadoVarredura, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.n++
	if v.n == v.alvo {
		v.cancel()
	}
	return settlement.ResultadoVarredura{}, nil
}

func (v *varredorFake) total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.n
}
