package campaigns

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/clock"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
	"github.com/marcelojr/rifa-pix/internal/platform/storage/postgres"
	"github.com/marcelojr/rifa-pix/internal/platform/storage/sqlitetest"
)

var agoraTeste = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type serviceDeps struct {
	campanhas *postgres.CampanhaRepository
	numeros   *postgres.NumeroRepository
	contador  *inMemoryContador
	service   *Service
}

func newServiceDeps(t *testing.T) serviceDeps {
	db := sqlitetest.Open(t)
	d := serviceDeps{
		campanhas: postgres.NewCampanhaRepository(db),
		numeros:   postgres.NewNumeroRepository(db),
		contador:  newInMemoryContador(),
	}
	d.service = NewService(d.campanhas, d.numeros, d.contador, clock.Func(func() time.Time { return agoraTeste }), ids.NewGenerator(), nil)
	return d
}

func novaCampanhaValida() domain.NovaCampanha {
	return domain.NovaCampanha{
		Titulo:        "Moto 0km",
		Descricao:     "Honda CG 160",
		ImagemURL:     "https://cdn.example.com/moto.png",
		PrecoUnitario: 500,
		PrecosCombo:   domain.PrecosCombo{"+70": 450},
		DataSorteio:   agoraTeste.Add(30 * 24 * time.Hour),
	}
}

func TestServiceCriar_QuandoValida_DevePersistirAtiva(t *testing.T) {
	deps := newServiceDeps(t)

	campanha, err := deps.service.Criar(context.Background(), novaCampanhaValida())

	require.NoError(t, err)
	assert.NotEmpty(t, campanha.ID)
	assert.Equal(t, domain.CampanhaAtiva, campanha.Status)

	salva, err := deps.campanhas.FindByID(context.Background(), campanha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moto 0km", salva.Titulo)
	assert.Equal(t, domain.PrecosCombo{"+70": 450}, salva.PrecosCombo)
}

func TestServiceCriar_DeveColetarTodasAsViolacoes(t *testing.T) {
	deps := newServiceDeps(t)

	_, err := deps.service.Criar(context.Background(), domain.NovaCampanha{
		ImagemURL:   "nao-e-url",
		PrecosCombo: domain.PrecosCombo{"unit": 100, "+10": 0, " ": 100},
		DataSorteio: agoraTeste.Add(-time.Hour),
	})

	var ev *domain.ErroValidacao
	require.True(t, errors.As(err, &ev))
	campos := make(map[string]string)
	for _, c := range ev.Campos {
		campos[c.Campo] = c.Mensagem
	}
	assert.Equal(t, map[string]string{
		"title":            "obrigatorio",
		"description":      "obrigatorio",
		"imageUrl":         "url invalida",
		"unitPrice":        "deve ser maior que zero",
		"comboPrices.unit": "rotulo reservado",
		"comboPrices.+10":  "deve ser maior que zero",
		"comboPrices":      "rotulo vazio",
		"drawDate":         "deve estar no futuro",
	}, campos)
}

func TestServiceListarAtivas_DeveUsarContador(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)
	_, err = deps.contador.Incrementar(ctx, CounterKeyVendidos(campanha.ID), 42)
	require.NoError(t, err)

	vitrine, err := deps.service.ListarAtivas(ctx)

	require.NoError(t, err)
	require.Len(t, vitrine, 1)
	assert.Equal(t, campanha.ID, vitrine[0].ID)
	assert.Equal(t, int64(42), vitrine[0].Vendidos)
}

func TestServiceListarAtivas_QuandoContadorFalha_DeveContarNoBanco(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)
	require.NoError(t, deps.numeros.InserirReservados(ctx, []domain.NumeroRifa{
		{ID: "n1", PagamentoID: "p1", CampanhaID: campanha.ID, Numero: 1, CriadoEm: agoraTeste},
		{ID: "n2", PagamentoID: "p1", CampanhaID: campanha.ID, Numero: 2, CriadoEm: agoraTeste},
		{ID: "n3", PagamentoID: "p2", CampanhaID: campanha.ID, Numero: 3, CriadoEm: agoraTeste},
	}))
	_, err = deps.numeros.MarcarPagos(ctx, "p1")
	require.NoError(t, err)
	deps.contador.falha = errors.New("redis fora")

	vitrine, err := deps.service.ListarAtivas(ctx)

	require.NoError(t, err)
	require.Len(t, vitrine, 1)
	assert.Equal(t, int64(2), vitrine[0].Vendidos)
}

func TestServiceBuscar_QuandoInativa_DeveRetornarNotFound(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)
	_, err = deps.service.AlterarStatus(ctx, campanha.ID, domain.CampanhaInativa)
	require.NoError(t, err)

	_, err = deps.service.Buscar(ctx, campanha.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = deps.service.Buscar(ctx, "nao-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceAlterarStatus(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)

	atualizada, err := deps.service.AlterarStatus(ctx, campanha.ID, domain.CampanhaSorteada)
	require.NoError(t, err)
	assert.Equal(t, domain.CampanhaSorteada, atualizada.Status)

	_, err = deps.service.AlterarStatus(ctx, campanha.ID, domain.StatusCampanha("arquivada"))
	assert.ErrorIs(t, err, domain.ErrStatusInvalido)

	_, err = deps.service.AlterarStatus(ctx, "nao-existe", domain.CampanhaAtiva)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ativas, err := deps.service.ListarAtivas(ctx)
	require.NoError(t, err)
	assert.Empty(t, ativas)
}

func TestServiceSincronizarVendidos_DeveReescreverContador(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)
	require.NoError(t, deps.numeros.InserirReservados(ctx, []domain.NumeroRifa{
		{ID: "n1", PagamentoID: "p1", CampanhaID: campanha.ID, Numero: 1, CriadoEm: agoraTeste},
	}))
	_, err = deps.numeros.MarcarPagos(ctx, "p1")
	require.NoError(t, err)
	_, err = deps.contador.Incrementar(ctx, CounterKeyVendidos(campanha.ID), 99)
	require.NoError(t, err)

	require.NoError(t, deps.service.SincronizarVendidos(ctx))

	valor, ok := deps.contador.valor(CounterKeyVendidos(campanha.ID))
	require.True(t, ok)
	assert.Equal(t, int64(1), valor)
}

func TestServiceBuscar_QuandoContadorAusente_DeveContarNoBancoERegravar(t *testing.T) {
	deps := newServiceDeps(t)
	ctx := context.Background()

	campanha, err := deps.service.Criar(ctx, novaCampanhaValida())
	require.NoError(t, err)
	require.NoError(t, deps.numeros.InserirReservados(ctx, []domain.NumeroRifa{
		{ID: "n1", PagamentoID: "p1", CampanhaID: campanha.ID, Numero: 1, CriadoEm: agoraTeste},
		{ID: "n2", PagamentoID: "p1", CampanhaID: campanha.ID, Numero: 2, CriadoEm: agoraTeste},
	}))
	_, err = deps.numeros.MarcarPagos(ctx, "p1")
	require.NoError(t, err)
	// Redis perdeu a chave depois do boot (flush ou eviction).
	deps.contador.apagar(CounterKeyVendidos(campanha.ID))

	vitrine, err := deps.service.Buscar(ctx, campanha.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), vitrine.Vendidos)
	valor, ok := deps.contador.valor(CounterKeyVendidos(campanha.ID))
	require.True(t, ok, "contador deve ser regravado a partir do banco")
	assert.Equal(t, int64(2), valor)

	// Incrementos seguintes partem do total correto.
	_, err = deps.contador.Incrementar(ctx, CounterKeyVendidos(campanha.ID), 3)
	require.NoError(t, err)
	vitrine, err = deps.service.Buscar(ctx, campanha.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), vitrine.Vendidos)
}

func TestServiceCriar_DeveIniciarContadorZerado(t *testing.T) {
	deps := newServiceDeps(t)

	campanha, err := deps.service.Criar(context.Background(), novaCampanhaValida())

	require.NoError(t, err)
	valor, ok := deps.contador.valor(CounterKeyVendidos(campanha.ID))
	require.True(t, ok)
	assert.Zero(t, valor)
}

type inMemoryContador struct {
	mu      sync.Mutex
	valores map[string]int64
	falha   error
}

func newInMemoryContador() *inMemoryContador {
	return &inMemoryContador{valores: make(map[string]int64)}
}

func (c *inMemoryContador) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	atual, ok := c.valores[chave]
	if !ok {
		return 0, domain.ErrNotFound
	}
	c.valores[chave] = atual + delta
	return c.valores[chave], nil
}

func (c *inMemoryContador) Definir(_ context.Context, chave string, valor int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valores[chave] = valor
	return nil
}

func (c *inMemoryContador) ObterTodos(_ context.Context, chaves []string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.falha != nil {
		return nil, c.falha
	}
	result := make(map[string]int64, len(chaves))
	for _, chave := range chaves {
		if v, ok := c.valores[chave]; ok {
			result[chave] = v
		}
	}
	return result, nil
}

func (c *inMemoryContador) valor(chave string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.valores[chave]
	return v, ok
}

func (c *inMemoryContador) apagar(chave string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.valores, chave)
}
