package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
)

func numerosReservados(gen *ids.Generator, campanhaID domain.CampanhaID, pagamentoID domain.PagamentoID, numeros ...int) []domain.NumeroRifa {
	out := make([]domain.NumeroRifa, len(numeros))
	for i, n := range numeros {
		out[i] = domain.NumeroRifa{
			ID:          domain.NumeroID(gen.New()),
			PagamentoID: pagamentoID,
			CampanhaID:  campanhaID,
			Numero:      n,
			Status:      domain.NumeroReservado,
			CriadoEm:    time.Now().UTC(),
		}
	}
	return out
}

func TestNumeroRepository_MaiorNumero_QuandoCampanhaVazia_DeveRetornarZero(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	maior, err := repo.MaiorNumero(context.Background(), "campanha-vazia")

	require.NoError(t, err)
	assert.Equal(t, 0, maior)
}

func TestNumeroRepository_MaiorNumero_DeveConsiderarApenasACampanha(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	campanhaA := domain.CampanhaID(gen.New())
	campanhaB := domain.CampanhaID(gen.New())

	// Arrange
	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaA, "pag-a", 1, 2, 3)))
	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaB, "pag-b", 1, 2, 3, 4, 5, 6, 7)))

	// Act
	maiorA, err := repo.MaiorNumero(ctx, campanhaA)
	require.NoError(t, err)
	maiorB, err := repo.MaiorNumero(ctx, campanhaB)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 3, maiorA)
	assert.Equal(t, 7, maiorB)
}

func TestNumeroRepository_InserirReservados_QuandoNumeroJaExiste_DeveRetornarConflito(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	campanhaID := domain.CampanhaID(gen.New())

	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-1", 1, 2)))

	// Act
	err := repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-2", 2, 3))

	// Assert
	assert.ErrorIs(t, err, domain.ErrConflitoAlocacao)

	lista, err := repo.ListByPagamento(ctx, "pag-2")
	require.NoError(t, err)
	assert.Empty(t, lista)
}

func TestNumeroRepository_MarcarPagos_EContarVendidos(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	campanhaID := domain.CampanhaID(gen.New())

	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-1", 1, 2, 3)))
	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-2", 4, 5)))

	// Act
	marcados, err := repo.MarcarPagos(ctx, "pag-1")
	require.NoError(t, err)
	repetido, err := repo.MarcarPagos(ctx, "pag-1")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(3), marcados)
	assert.Equal(t, int64(0), repetido)

	vendidos, err := repo.ContarVendidos(ctx, campanhaID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), vendidos)

	lista, err := repo.ListByPagamento(ctx, "pag-1")
	require.NoError(t, err)
	require.Len(t, lista, 3)
	for _, n := range lista {
		assert.Equal(t, domain.NumeroPago, n.Status)
	}
}

func TestNumeroRepository_Liberar_DeveApagarSomenteReservados(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	campanhaID := domain.CampanhaID(gen.New())

	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-pago", 1, 2)))
	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-aberto", 3, 4)))
	_, err := repo.MarcarPagos(ctx, "pag-pago")
	require.NoError(t, err)

	// Act
	liberadosAberto, err := repo.Liberar(ctx, "pag-aberto")
	require.NoError(t, err)
	liberadosPago, err := repo.Liberar(ctx, "pag-pago")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(2), liberadosAberto)
	assert.Equal(t, int64(0), liberadosPago)

	maior, err := repo.MaiorNumero(ctx, campanhaID)
	require.NoError(t, err)
	assert.Equal(t, 2, maior)
}

func TestNumeroRepository_ListByPagamento_DeveOrdenarPorNumero(t *testing.T) {
	db := setupPostgres(t)
	repo := NewNumeroRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	campanhaID := domain.CampanhaID(gen.New())

	require.NoError(t, repo.InserirReservados(ctx, numerosReservados(gen, campanhaID, "pag-1", 9, 7, 8)))

	lista, err := repo.ListByPagamento(ctx, "pag-1")

	require.NoError(t, err)
	require.Len(t, lista, 3)
	assert.Equal(t, []int{7, 8, 9}, []int{lista[0].Numero, lista[1].Numero, lista[2].Numero})
}
