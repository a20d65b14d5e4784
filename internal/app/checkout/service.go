// Pacote checkout orquestra a compra: valida, precifica, abre a cobrança PIX e reserva os números.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

var (
	ErrCampanhaNaoEncontrada = errors.New("campanha nao encontrada")
	ErrCampanhaInativa       = errors.New("campanha nao esta ativa")
)

const ExpiracaoPadrao = 10 * time.Minute

type Dependencias struct {
	Campanhas   domain.CampanhaRepository
	Compradores domain.CompradorRepository
	Pagamentos  domain.PagamentoRepository
	Numeros     domain.NumeroRepository
	Tx          domain.Transactor
	Gateway     domain.GatewayPagamento
	Antifraude  domain.Antifraude
	Clock       domain.Clock
	IDs         *ids.Generator
	Logger      *slog.Logger
	// Expiracao é o prazo da reserva; zero usa ExpiracaoPadrao.
	Expiracao time.Duration
}

// Service implementa domain.CheckoutService.
type Service struct {
	campanhas   domain.CampanhaRepository
	compradores domain.CompradorRepository
	pagamentos  domain.PagamentoRepository
	numeros     domain.NumeroRepository
	tx          domain.Transactor
	gateway     domain.GatewayPagamento
	antifraude  domain.Antifraude
	allocator   *Allocator
	clock       domain.Clock
	ids         *ids.Generator
	logger      *slog.Logger
	expiracao   time.Duration
}

func NewService(d Dependencias) *Service {
	if d.IDs == nil {
		d.IDs = ids.DefaultGenerator()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Expiracao <= 0 {
		d.Expiracao = ExpiracaoPadrao
	}
	return &Service{
		campanhas:   d.Campanhas,
		compradores: d.Compradores,
		pagamentos:  d.Pagamentos,
		numeros:     d.Numeros,
		tx:          d.Tx,
		gateway:     d.Gateway,
		antifraude:  d.Antifraude,
		allocator:   NewAllocator(d.Numeros, d.Clock, d.IDs),
		clock:       d.Clock,
		ids:         d.IDs,
		logger:      d.Logger,
		expiracao:   d.Expiracao,
	}
}

// Checkout só grava algo depois que a cobrança existe no gateway; comprador, pagamento e números entram numa única transação.
func (s *Service) Checkout(ctx context.Context, pedido domain.Pedido) (domain.Recibo, error) {
	comprador, err := validarPedido(pedido)
	if err != nil {
		metrics.ObserveCheckout("invalid")
		return domain.Recibo{}, err
	}

	campanha, err := s.campanhas.FindByID(ctx, pedido.CampanhaID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveCheckout("not_found")
			return domain.Recibo{}, fmt.Errorf("%w: %s", ErrCampanhaNaoEncontrada, pedido.CampanhaID)
		}
		return domain.Recibo{}, fmt.Errorf("checkout: buscar campanha: %w", err)
	}
	if campanha.Status != domain.CampanhaAtiva {
		metrics.ObserveCheckout("inactive")
		return domain.Recibo{}, fmt.Errorf("%w: %s esta %s", ErrCampanhaInativa, campanha.ID, campanha.Status)
	}

	preco, err := ResolverPreco(campanha, pedido.Tier, pedido.Quantidade)
	if err != nil {
		metrics.ObserveCheckout("invalid")
		return domain.Recibo{}, err
	}

	if s.antifraude != nil {
		tentativa := domain.TentativaCompra{CampanhaID: campanha.ID, OrigemIP: pedido.OrigemIP, CPF: comprador.CPF}
		if err := s.antifraude.Validar(ctx, tentativa); err != nil {
			metrics.ObserveCheckout("rate_limited")
			return domain.Recibo{}, err
		}
	}

	agora := s.clock.Agora()
	compradorID := domain.CompradorID(s.ids.NewAt(agora))
	pagamentoID := domain.PagamentoID(s.ids.NewAt(agora))

	cobranca, err := s.gateway.CriarCobranca(ctx, preco.Total, domain.MetadadosCobranca{
		CampanhaID:  campanha.ID,
		CompradorID: compradorID,
		Quantidade:  pedido.Quantidade,
		Tier:        pedido.Tier,
	})
	if err != nil {
		metrics.ObserveCheckout("gateway_error")
		if !errors.Is(err, domain.ErrGateway) {
			err = fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return domain.Recibo{}, fmt.Errorf("checkout: criar cobranca: %w", err)
	}

	pagamento := domain.Pagamento{
		ID:          pagamentoID,
		CompradorID: compradorID,
		CampanhaID:  campanha.ID,
		Valor:       preco.Total,
		Quantidade:  pedido.Quantidade,
		Tier:        pedido.Tier,
		CobrancaID:  cobranca.ID,
		CodigoPix:   cobranca.CodigoPix,
		QRCodeURL:   cobranca.QRCodeURL,
		Status:      domain.PagamentoPendente,
		CriadoEm:    agora,
		ExpiraEm:    agora.Add(s.expiracao),
	}
	registro := domain.Comprador{
		ID:       compradorID,
		Nome:     comprador.Nome,
		CPF:      comprador.CPF,
		Celular:  comprador.Celular,
		Email:    comprador.Email,
		Endereco: comprador.Endereco,
		CriadoEm: agora,
	}

	var numeros []int
	persistir := func(ctx context.Context) error {
		if err := s.compradores.Create(ctx, registro); err != nil {
			return err
		}
		if err := s.pagamentos.Create(ctx, pagamento); err != nil {
			return err
		}
		reservados, err := s.allocator.Reservar(ctx, campanha.ID, pagamento.ID, pagamento.Quantidade)
		if err != nil {
			return err
		}
		numeros = reservados
		return nil
	}

	err = s.tx.WithTx(ctx, persistir)
	if errors.Is(err, domain.ErrConflitoAlocacao) {
		// Outro checkout levou os mesmos números; a nova tentativa recalcula a base.
		metrics.IncConflitoAlocacao()
		s.logger.Warn("conflito na alocacao, repetindo", "campanha", campanha.ID, "pagamento", pagamento.ID)
		err = s.tx.WithTx(ctx, persistir)
		if errors.Is(err, domain.ErrConflitoAlocacao) {
			metrics.IncConflitoAlocacao()
		}
	}
	if err != nil {
		metrics.IncCobrancaOrfa()
		metrics.ObserveCheckout("persist_error")
		s.logger.Error("cobranca criada sem checkout persistido",
			"cobranca", cobranca.ID,
			"campanha", campanha.ID,
			"pagamento", pagamento.ID,
			"valor", preco.Total.String(),
			"err", err,
		)
		return domain.Recibo{}, fmt.Errorf("checkout: persistir: %w", err)
	}

	metrics.AddNumerosReservados(len(numeros))
	metrics.ObserveCheckout("created")
	s.logger.Info("checkout criado",
		"pagamento", pagamento.ID,
		"campanha", campanha.ID,
		"quantidade", pagamento.Quantidade,
		"valor", preco.Total.String(),
	)

	return domain.Recibo{
		PagamentoID: pagamento.ID,
		CampanhaID:  campanha.ID,
		CodigoPix:   pagamento.CodigoPix,
		QRCodeURL:   pagamento.QRCodeURL,
		ExpiraEm:    pagamento.ExpiraEm,
		Valor:       pagamento.Valor,
		Numeros:     numeros,
	}, nil
}

// Detalhar monta a visão do pagamento para a tela de acompanhamento.
func (s *Service) Detalhar(ctx context.Context, id domain.PagamentoID) (domain.DetalhePagamento, error) {
	pagamento, err := s.pagamentos.FindByID(ctx, id)
	if err != nil {
		return domain.DetalhePagamento{}, fmt.Errorf("checkout: pagamento %s: %w", id, err)
	}

	comprador, err := s.compradores.FindByID(ctx, pagamento.CompradorID)
	if err != nil {
		return domain.DetalhePagamento{}, fmt.Errorf("checkout: comprador %s: %w", pagamento.CompradorID, err)
	}

	detalhe := domain.DetalhePagamento{Pagamento: pagamento, Comprador: comprador}

	campanha, err := s.campanhas.FindByID(ctx, pagamento.CampanhaID)
	switch {
	case err == nil:
		detalhe.CampanhaTitulo = campanha.Titulo
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.DetalhePagamento{}, fmt.Errorf("checkout: campanha %s: %w", pagamento.CampanhaID, err)
	}

	linhas, err := s.numeros.ListByPagamento(ctx, pagamento.ID)
	if err != nil {
		return domain.DetalhePagamento{}, fmt.Errorf("checkout: numeros %s: %w", pagamento.ID, err)
	}
	detalhe.Numeros = make([]int, len(linhas))
	for i, n := range linhas {
		detalhe.Numeros[i] = n.Numero
	}

	return detalhe, nil
}

var _ domain.CheckoutService = (*Service)(nil)
