package checkout

import (
	"fmt"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

const (
	QuantidadeMinima = 1
	QuantidadeMaxima = 999
)

// Preco é o resultado da precificação em centavos; Total = Unitario × quantidade.
type Preco struct {
	Unitario domain.Centavos
	Total    domain.Centavos
}

// ResolverPreco nunca cai num preço padrão: tier desconhecido é erro.
func ResolverPreco(c domain.Campanha, tier string, quantidade int) (Preco, error) {
	if quantidade < QuantidadeMinima || quantidade > QuantidadeMaxima {
		return Preco{}, fmt.Errorf("%w: %d fora de %d..%d", domain.ErrQuantidadeInvalida, quantidade, QuantidadeMinima, QuantidadeMaxima)
	}

	var unitario domain.Centavos
	if tier == domain.TierUnitario {
		unitario = c.PrecoUnitario
	} else {
		preco, ok := c.PrecosCombo[tier]
		if !ok {
			return Preco{}, fmt.Errorf("%w: %q", domain.ErrTierDesconhecido, tier)
		}
		unitario = preco
	}

	if unitario <= 0 {
		return Preco{}, fmt.Errorf("%w: %q sem preco positivo", domain.ErrTierDesconhecido, tier)
	}

	return Preco{Unitario: unitario, Total: unitario.Vezes(quantidade)}, nil
}
