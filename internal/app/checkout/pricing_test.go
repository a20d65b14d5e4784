package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

func TestResolverPreco(t *testing.T) {
	campanha := domain.Campanha{
		PrecoUnitario: 1000,
		PrecosCombo:   domain.PrecosCombo{"+70": 6500, "+150": 450},
	}

	casos := []struct {
		nome       string
		tier       string
		quantidade int
		esperado   Preco
		erro       error
	}{
		{nome: "unitario", tier: domain.TierUnitario, quantidade: 3, esperado: Preco{Unitario: 1000, Total: 3000}},
		{nome: "combo sobrescreve unitario", tier: "+70", quantidade: 1, esperado: Preco{Unitario: 6500, Total: 6500}},
		{nome: "combo com quantidade", tier: "+150", quantidade: 150, esperado: Preco{Unitario: 450, Total: 67500}},
		{nome: "limite superior", tier: domain.TierUnitario, quantidade: 999, esperado: Preco{Unitario: 1000, Total: 999000}},
		{nome: "tier desconhecido", tier: "+9999", quantidade: 1, erro: domain.ErrTierDesconhecido},
		{nome: "tier vazio nao vira unitario", tier: "", quantidade: 1, erro: domain.ErrTierDesconhecido},
		{nome: "quantidade zero", tier: domain.TierUnitario, quantidade: 0, erro: domain.ErrQuantidadeInvalida},
		{nome: "quantidade acima do maximo", tier: domain.TierUnitario, quantidade: 1000, erro: domain.ErrQuantidadeInvalida},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			preco, err := ResolverPreco(campanha, tc.tier, tc.quantidade)
			if tc.erro != nil {
				assert.ErrorIs(t, err, tc.erro)
				assert.Equal(t, Preco{}, preco)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.esperado, preco)
		})
	}
}

func TestResolverPreco_QuandoCampanhaSemPreco_DeveFalhar(t *testing.T) {
	_, err := ResolverPreco(domain.Campanha{}, domain.TierUnitario, 1)

	assert.ErrorIs(t, err, domain.ErrTierDesconhecido)
}

func TestResolverPreco_EhDeterministico(t *testing.T) {
	campanha := domain.Campanha{PrecoUnitario: 333}

	primeiro, err := ResolverPreco(campanha, domain.TierUnitario, 7)
	require.NoError(t, err)
	segundo, err := ResolverPreco(campanha, domain.TierUnitario, 7)
	require.NoError(t, err)

	assert.Equal(t, primeiro, segundo)
	assert.Equal(t, domain.Centavos(2331), primeiro.Total)
}
