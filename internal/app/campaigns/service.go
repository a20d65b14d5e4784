// Pacote campaigns cuida do catálogo público e da administração das campanhas.
package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
)

type Service struct {
	campanhas domain.CampanhaRepository
	numeros   domain.NumeroRepository
	contador  domain.Contador
	clock     domain.Clock
	ids       *ids.Generator
	logger    *slog.Logger
}

func NewService(
	campanhas domain.CampanhaRepository,
	numeros domain.NumeroRepository,
	contador domain.Contador,
	clock domain.Clock,
	idsGen *ids.Generator,
	logger *slog.Logger,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		campanhas: campanhas,
		numeros:   numeros,
		contador:  contador,
		clock:     clock,
		ids:       idsGen,
		logger:    logger,
	}
}

func (s *Service) ListarAtivas(ctx context.Context) ([]domain.CampanhaVitrine, error) {
	campanhas, err := s.campanhas.ListAtivas(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaigns: listar ativas: %w", err)
	}

	vendidos, err := s.vendidos(ctx, campanhas)
	if err != nil {
		return nil, err
	}

	vitrine := make([]domain.CampanhaVitrine, len(campanhas))
	for i, c := range campanhas {
		vitrine[i] = domain.CampanhaVitrine{Campanha: c, Vendidos: vendidos[c.ID]}
	}
	return vitrine, nil
}

// Buscar só expõe campanhas ativas; as demais se comportam como inexistentes para o público.
func (s *Service) Buscar(ctx context.Context, id domain.CampanhaID) (domain.CampanhaVitrine, error) {
	campanha, err := s.campanhas.FindByID(ctx, id)
	if err != nil {
		return domain.CampanhaVitrine{}, fmt.Errorf("campaigns: buscar %s: %w", id, err)
	}
	if campanha.Status != domain.CampanhaAtiva {
		return domain.CampanhaVitrine{}, fmt.Errorf("campaigns: buscar %s: %w", id, domain.ErrNotFound)
	}

	vendidos, err := s.vendidos(ctx, []domain.Campanha{campanha})
	if err != nil {
		return domain.CampanhaVitrine{}, err
	}
	return domain.CampanhaVitrine{Campanha: campanha, Vendidos: vendidos[campanha.ID]}, nil
}

// vendidos lê do contador Redis; chaves ausentes são recontadas no banco e regravadas.
func (s *Service) vendidos(ctx context.Context, campanhas []domain.Campanha) (map[domain.CampanhaID]int64, error) {
	resultado := make(map[domain.CampanhaID]int64, len(campanhas))
	if len(campanhas) == 0 {
		return resultado, nil
	}

	faltantes := campanhas
	gravar := false
	if s.contador != nil {
		chaves := make([]string, len(campanhas))
		for i, c := range campanhas {
			chaves[i] = CounterKeyVendidos(c.ID)
		}
		valores, err := s.contador.ObterTodos(ctx, chaves)
		if err == nil {
			faltantes = nil
			for _, c := range campanhas {
				total, ok := valores[CounterKeyVendidos(c.ID)]
				if !ok {
					faltantes = append(faltantes, c)
					continue
				}
				resultado[c.ID] = total
			}
			gravar = true
		} else {
			s.logger.Warn("contador indisponivel, contando no banco", "err", err)
		}
	}

	for _, c := range faltantes {
		total, err := s.numeros.ContarVendidos(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("campaigns: contar vendidos %s: %w", c.ID, err)
		}
		resultado[c.ID] = total
		if !gravar {
			continue
		}
		if err := s.contador.Definir(ctx, CounterKeyVendidos(c.ID), total); err != nil {
			s.logger.Warn("falha ao regravar contador de vendidos", "campanha", c.ID, "err", err)
		}
	}
	return resultado, nil
}

// SincronizarVendidos reescreve os contadores das campanhas ativas a partir do banco.
func (s *Service) SincronizarVendidos(ctx context.Context) error {
	if s.contador == nil {
		return nil
	}
	campanhas, err := s.campanhas.ListAtivas(ctx)
	if err != nil {
		return fmt.Errorf("campaigns: sincronizar: %w", err)
	}
	for _, c := range campanhas {
		total, err := s.numeros.ContarVendidos(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("campaigns: sincronizar %s: %w", c.ID, err)
		}
		if err := s.contador.Definir(ctx, CounterKeyVendidos(c.ID), total); err != nil {
			return fmt.Errorf("campaigns: sincronizar %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *Service) Criar(ctx context.Context, nova domain.NovaCampanha) (domain.Campanha, error) {
	agora := s.clock.Agora()
	if err := validarNovaCampanha(nova, agora); err != nil {
		return domain.Campanha{}, err
	}

	combos := make(domain.PrecosCombo, len(nova.PrecosCombo))
	for tier, preco := range nova.PrecosCombo {
		combos[strings.TrimSpace(tier)] = preco
	}

	campanha := domain.Campanha{
		ID:            domain.CampanhaID(s.ids.NewAt(agora)),
		Titulo:        strings.TrimSpace(nova.Titulo),
		Descricao:     strings.TrimSpace(nova.Descricao),
		ImagemURL:     strings.TrimSpace(nova.ImagemURL),
		Status:        domain.CampanhaAtiva,
		PrecoUnitario: nova.PrecoUnitario,
		PrecosCombo:   combos,
		DataSorteio:   nova.DataSorteio.UTC(),
		CriadoEm:      agora,
		AtualizadoEm:  agora,
	}
	if err := s.campanhas.Create(ctx, campanha); err != nil {
		return domain.Campanha{}, fmt.Errorf("campaigns: criar: %w", err)
	}
	if s.contador != nil {
		// Sem a chave, os incrementos da conciliação seriam descartados até a primeira leitura.
		if err := s.contador.Definir(ctx, CounterKeyVendidos(campanha.ID), 0); err != nil {
			s.logger.Warn("falha ao iniciar contador de vendidos", "campanha", campanha.ID, "err", err)
		}
	}

	s.logger.Info("campanha criada", "campanha", campanha.ID, "titulo", campanha.Titulo)
	return campanha, nil
}

func (s *Service) AlterarStatus(ctx context.Context, id domain.CampanhaID, status domain.StatusCampanha) (domain.Campanha, error) {
	if _, err := domain.ParseStatusCampanha(string(status)); err != nil {
		return domain.Campanha{}, err
	}

	campanha, err := s.campanhas.FindByID(ctx, id)
	if err != nil {
		return domain.Campanha{}, fmt.Errorf("campaigns: alterar status %s: %w", id, err)
	}
	if campanha.Status == status {
		return campanha, nil
	}

	anterior := campanha.Status
	campanha.Status = status
	campanha.AtualizadoEm = s.clock.Agora()
	if err := s.campanhas.Update(ctx, campanha); err != nil {
		return domain.Campanha{}, fmt.Errorf("campaigns: alterar status %s: %w", id, err)
	}

	s.logger.Info("status da campanha alterado", "campanha", id, "de", anterior, "para", status)
	return campanha, nil
}

var _ domain.CampanhaService = (*Service)(nil)
