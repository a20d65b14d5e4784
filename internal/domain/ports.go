package domain

import (
	"context"
	"time"
)

// Transactor executa fn dentro de uma transação; repositórios chamados com o ctx recebido participam dela.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CampanhaRepository interface {
	Create(ctx context.Context, c Campanha) error
	Update(ctx context.Context, c Campanha) error
	FindByID(ctx context.Context, id CampanhaID) (Campanha, error)
	ListAtivas(ctx context.Context) ([]Campanha, error)
}

type CompradorRepository interface {
	Create(ctx context.Context, c Comprador) error
	FindByID(ctx context.Context, id CompradorID) (Comprador, error)
}

type PagamentoRepository interface {
	Create(ctx context.Context, p Pagamento) error
	FindByID(ctx context.Context, id PagamentoID) (Pagamento, error)
	FindByCobrancaID(ctx context.Context, cobrancaID string) (Pagamento, error)
	// TransitarStatus só altera a linha se o status atual estiver em origens; false indica que nada mudou.
	TransitarStatus(ctx context.Context, id PagamentoID, origens []StatusPagamento, destino StatusPagamento, em time.Time) (bool, error)
	// ListAbertosExpirados prioriza quem nunca falhou; pagamentos com falha recente vão para o fim da fila.
	ListAbertosExpirados(ctx context.Context, agora time.Time, limite int) ([]Pagamento, error)
	RegistrarTentativa(ctx context.Context, id PagamentoID, em time.Time) error
}

type NumeroRepository interface {
	MaiorNumero(ctx context.Context, campanhaID CampanhaID) (int, error)
	InserirReservados(ctx context.Context, numeros []NumeroRifa) error
	ListByPagamento(ctx context.Context, pagamentoID PagamentoID) ([]NumeroRifa, error)
	MarcarPagos(ctx context.Context, pagamentoID PagamentoID) (int64, error)
	Liberar(ctx context.Context, pagamentoID PagamentoID) (int64, error)
	ContarVendidos(ctx context.Context, campanhaID CampanhaID) (int64, error)
}

type AdminRepository interface {
	Create(ctx context.Context, a AdminUsuario) error
	FindByUsername(ctx context.Context, username string) (AdminUsuario, error)
}

type MetadadosCobranca struct {
	CampanhaID  CampanhaID
	CompradorID CompradorID
	Quantidade  int
	Tier        string
}

type Cobranca struct {
	ID        string
	CodigoPix string
	QRCodeURL string
	ExpiraEm  time.Time
}

// GatewayPagamento abstrai o provedor PIX; qualquer falha de rede ou de aplicação embrulha ErrGateway.
type GatewayPagamento interface {
	CriarCobranca(ctx context.Context, valor Centavos, meta MetadadosCobranca) (Cobranca, error)
	StatusCobranca(ctx context.Context, cobrancaID string) (StatusCobranca, error)
}

// Contador guarda totais desnormalizados; o banco continua sendo a fonte da verdade.
type Contador interface {
	// Incrementar só atua sobre chaves existentes; chave ausente devolve ErrNotFound e continua ausente.
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Definir(ctx context.Context, chave string, valor int64) error
	// ObterTodos omite do mapa as chaves que não existem.
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

// PedidoConciliacao é o item que circula na fila entre o webhook e o worker.
type PedidoConciliacao struct {
	PagamentoID PagamentoID `json:"pagamento_id"`
	Origem      string      `json:"origem"`
	RecebidoEm  time.Time   `json:"recebido_em"`
}

type Fila interface {
	PublicarConciliacao(ctx context.Context, pedido PedidoConciliacao) error
	ConsumirConciliacoes(ctx context.Context, handler func(context.Context, PedidoConciliacao) error) error
}

type TentativaCompra struct {
	CampanhaID CampanhaID
	OrigemIP   string
	CPF        string
}

type Antifraude interface {
	Validar(ctx context.Context, tentativa TentativaCompra) error
}

// Trava é um lock distribuído simples; o token devolvido precisa ser apresentado para liberar.
type Trava interface {
	TryLock(ctx context.Context, chave string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, chave, token string) error
}

type Clock interface {
	Agora() time.Time
}

type DadosComprador struct {
	Nome     string
	CPF      string
	Celular  string
	Email    string
	Endereco string
}

type Pedido struct {
	CampanhaID CampanhaID
	Quantidade int
	Tier       string
	Comprador  DadosComprador
	OrigemIP   string
}

type Recibo struct {
	PagamentoID PagamentoID
	CampanhaID  CampanhaID
	CodigoPix   string
	QRCodeURL   string
	ExpiraEm    time.Time
	Valor       Centavos
	Numeros     []int
}

type NovaCampanha struct {
	Titulo        string
	Descricao     string
	ImagemURL     string
	PrecoUnitario Centavos
	PrecosCombo   PrecosCombo
	DataSorteio   time.Time
}

// Principal é a identidade autenticada que o middleware coloca no contexto da requisição.
type Principal struct {
	AdminID  AdminID
	Username string
	ExpiraEm time.Time
}

type Sessao struct {
	Token    string
	ExpiraEm time.Time
}

type CheckoutService interface {
	Checkout(ctx context.Context, pedido Pedido) (Recibo, error)
	Detalhar(ctx context.Context, id PagamentoID) (DetalhePagamento, error)
}

type ConciliacaoService interface {
	Conciliar(ctx context.Context, id PagamentoID) (StatusPagamento, error)
	Notificar(ctx context.Context, cobrancaID string) error
}

type CampanhaService interface {
	ListarAtivas(ctx context.Context) ([]CampanhaVitrine, error)
	Buscar(ctx context.Context, id CampanhaID) (CampanhaVitrine, error)
	Criar(ctx context.Context, nova NovaCampanha) (Campanha, error)
	AlterarStatus(ctx context.Context, id CampanhaID, status StatusCampanha) (Campanha, error)
}

type AuthService interface {
	Login(ctx context.Context, username, senha string) (Sessao, error)
	Verificar(token string) (Principal, error)
}
