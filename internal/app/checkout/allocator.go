package checkout

import (
	"context"
	"fmt"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
)

// Allocator reserva números consecutivos acima do maior número vivo da campanha.
// Deve rodar dentro da transação do checkout, carregada pelo ctx.
type Allocator struct {
	numeros domain.NumeroRepository
	clock   domain.Clock
	ids     *ids.Generator
}

func NewAllocator(numeros domain.NumeroRepository, clock domain.Clock, idsGen *ids.Generator) *Allocator {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Allocator{numeros: numeros, clock: clock, ids: idsGen}
}

// Reservar devolve os números em ordem crescente; corrida com outro checkout vira domain.ErrConflitoAlocacao.
func (a *Allocator) Reservar(ctx context.Context, campanhaID domain.CampanhaID, pagamentoID domain.PagamentoID, quantidade int) ([]int, error) {
	if quantidade < QuantidadeMinima || quantidade > QuantidadeMaxima {
		return nil, fmt.Errorf("%w: %d", domain.ErrQuantidadeInvalida, quantidade)
	}

	base, err := a.numeros.MaiorNumero(ctx, campanhaID)
	if err != nil {
		return nil, fmt.Errorf("checkout: maior numero: %w", err)
	}

	agora := a.clock.Agora()
	numeros := make([]int, quantidade)
	linhas := make([]domain.NumeroRifa, quantidade)
	for i := 0; i < quantidade; i++ {
		numeros[i] = base + i + 1
		linhas[i] = domain.NumeroRifa{
			ID:          domain.NumeroID(a.ids.NewAt(agora)),
			PagamentoID: pagamentoID,
			CampanhaID:  campanhaID,
			Numero:      numeros[i],
			Status:      domain.NumeroReservado,
			CriadoEm:    agora,
		}
	}

	if err := a.numeros.InserirReservados(ctx, linhas); err != nil {
		return nil, fmt.Errorf("checkout: reservar numeros: %w", err)
	}
	return numeros, nil
}
