package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/rifa-pix/internal/app/checkout"
	"github.com/marcelojr/rifa-pix/internal/domain"
)

type compradorRequest struct {
	Nome     string `json:"name"`
	CPF      string `json:"taxId"`
	Celular  string `json:"phone"`
	Email    string `json:"email"`
	Endereco string `json:"address"`
}

type checkoutRequest struct {
	CampanhaID string           `json:"campaignId"`
	Quantidade int              `json:"quantity"`
	Tier       string           `json:"tier"`
	Comprador  compradorRequest `json:"buyer"`
}

func (r checkoutRequest) paraPedido() domain.Pedido {
	tier := strings.TrimSpace(r.Tier)
	if tier == "" {
		tier = domain.TierUnitario
	}
	return domain.Pedido{
		CampanhaID: domain.CampanhaID(strings.TrimSpace(r.CampanhaID)),
		Quantidade: r.Quantidade,
		Tier:       tier,
		Comprador: domain.DadosComprador{
			Nome:     r.Comprador.Nome,
			CPF:      r.Comprador.CPF,
			Celular:  r.Comprador.Celular,
			Email:    r.Comprador.Email,
			Endereco: r.Comprador.Endereco,
		},
	}
}

type checkoutResponse struct {
	PagamentoID string    `json:"paymentId"`
	CampanhaID  string    `json:"campaignId"`
	CodigoPix   string    `json:"payerCode"`
	QRCodeURL   string    `json:"qrCodeUrl,omitempty"`
	ExpiraEm    time.Time `json:"expiresAt"`
	Valor       string    `json:"amount"`
	Numeros     []string  `json:"numbers"`
}

func novoCheckoutResponse(r domain.Recibo) checkoutResponse {
	return checkoutResponse{
		PagamentoID: string(r.PagamentoID),
		CampanhaID:  string(r.CampanhaID),
		CodigoPix:   r.CodigoPix,
		QRCodeURL:   r.QRCodeURL,
		ExpiraEm:    r.ExpiraEm,
		Valor:       r.Valor.String(),
		Numeros:     formatarNumeros(r.Numeros),
	}
}

type compradorResponse struct {
	Nome    string `json:"name"`
	CPF     string `json:"taxId"`
	Email   string `json:"email,omitempty"`
	Celular string `json:"phone,omitempty"`
}

type pagamentoResponse struct {
	ID             string            `json:"id"`
	CampanhaID     string            `json:"campaignId"`
	CampanhaTitulo string            `json:"campaignTitle,omitempty"`
	Status         string            `json:"status"`
	Valor          string            `json:"amount"`
	Quantidade     int               `json:"quantity"`
	Tier           string            `json:"tier"`
	CodigoPix      string            `json:"payerCode,omitempty"`
	QRCodeURL      string            `json:"qrCodeUrl,omitempty"`
	CriadoEm       time.Time         `json:"createdAt"`
	ExpiraEm       time.Time         `json:"expiresAt"`
	PagoEm         *time.Time        `json:"paidAt,omitempty"`
	Comprador      compradorResponse `json:"buyer"`
	Numeros        []string          `json:"numbers"`
}

// novoPagamentoResponse mascara o CPF e esconde os números até o pagamento, exceto na visão admin.
func novoPagamentoResponse(d domain.DetalhePagamento, admin bool) pagamentoResponse {
	p := d.Pagamento
	resp := pagamentoResponse{
		ID:             string(p.ID),
		CampanhaID:     string(p.CampanhaID),
		CampanhaTitulo: d.CampanhaTitulo,
		Status:         string(p.Status),
		Valor:          p.Valor.String(),
		Quantidade:     p.Quantidade,
		Tier:           p.Tier,
		CriadoEm:       p.CriadoEm,
		ExpiraEm:       p.ExpiraEm,
		PagoEm:         p.PagoEm,
		Comprador: compradorResponse{
			Nome: d.Comprador.Nome,
			CPF:  MascararCPF(d.Comprador.CPF),
		},
		Numeros: []string{},
	}
	if p.Status.Aberto() {
		resp.CodigoPix = p.CodigoPix
		resp.QRCodeURL = p.QRCodeURL
	}
	if p.Status == domain.PagamentoPago || admin {
		resp.Numeros = formatarNumeros(d.Numeros)
	}
	if admin {
		resp.Comprador.CPF = d.Comprador.CPF
		resp.Comprador.Email = d.Comprador.Email
		resp.Comprador.Celular = d.Comprador.Celular
	}
	return resp
}

type campanhaResponse struct {
	ID            string            `json:"id"`
	Titulo        string            `json:"title"`
	Descricao     string            `json:"description"`
	ImagemURL     string            `json:"imageUrl"`
	Status        string            `json:"status"`
	PrecoUnitario string            `json:"unitPrice"`
	PrecosCombo   map[string]string `json:"comboPrices"`
	DataSorteio   time.Time         `json:"drawDate"`
	Vendidos      int64             `json:"sold"`
}

func novaCampanhaResponse(c domain.CampanhaVitrine) campanhaResponse {
	combos := make(map[string]string, len(c.PrecosCombo))
	for tier, preco := range c.PrecosCombo {
		combos[tier] = preco.String()
	}
	return campanhaResponse{
		ID:            string(c.ID),
		Titulo:        c.Titulo,
		Descricao:     c.Descricao,
		ImagemURL:     c.ImagemURL,
		Status:        string(c.Status),
		PrecoUnitario: c.PrecoUnitario.String(),
		PrecosCombo:   combos,
		DataSorteio:   c.DataSorteio,
		Vendidos:      c.Vendidos,
	}
}

// campanhaRequest recebe valores como string decimal ("5.00") para não perder centavos em float.
type campanhaRequest struct {
	Titulo        string            `json:"title"`
	Descricao     string            `json:"description"`
	ImagemURL     string            `json:"imageUrl"`
	PrecoUnitario string            `json:"unitPrice"`
	PrecosCombo   map[string]string `json:"comboPrices"`
	DataSorteio   time.Time         `json:"drawDate"`
}

func (r campanhaRequest) paraNovaCampanha() (domain.NovaCampanha, error) {
	erro := &domain.ErroValidacao{}
	nova := domain.NovaCampanha{
		Titulo:      r.Titulo,
		Descricao:   r.Descricao,
		ImagemURL:   r.ImagemURL,
		DataSorteio: r.DataSorteio,
	}

	if strings.TrimSpace(r.PrecoUnitario) != "" {
		preco, err := domain.ParseCentavos(strings.TrimSpace(r.PrecoUnitario))
		if err != nil {
			erro.Adicionar("unitPrice", "valor invalido")
		}
		nova.PrecoUnitario = preco
	}

	if len(r.PrecosCombo) > 0 {
		nova.PrecosCombo = make(domain.PrecosCombo, len(r.PrecosCombo))
		for tier, valor := range r.PrecosCombo {
			preco, err := domain.ParseCentavos(strings.TrimSpace(valor))
			if err != nil {
				erro.Adicionar("comboPrices."+tier, "valor invalido")
				continue
			}
			nova.PrecosCombo[tier] = preco
		}
	}

	return nova, erro.OuNil()
}

type statusCampanhaRequest struct {
	Status string `json:"status"`
}

type webhookRequest struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Data          *struct {
		ID string `json:"id"`
	} `json:"data"`
}

// cobrancaID aceita o id no topo ou dentro de "data", formatos usados pelo gateway.
func (w webhookRequest) cobrancaID() string {
	switch {
	case strings.TrimSpace(w.ID) != "":
		return strings.TrimSpace(w.ID)
	case strings.TrimSpace(w.TransactionID) != "":
		return strings.TrimSpace(w.TransactionID)
	case w.Data != nil:
		return strings.TrimSpace(w.Data.ID)
	}
	return ""
}

type loginRequest struct {
	Username string `json:"username"`
	Senha    string `json:"password"`
}

type loginResponse struct {
	Token    string    `json:"token"`
	ExpiraEm time.Time `json:"expiresAt"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type erroResponse struct {
	Erro   string                 `json:"error"`
	Campos []domain.CampoInvalido `json:"fields,omitempty"`
}

// MascararCPF exibe só os três primeiros e os dois últimos dígitos: 123.XXX.XXX-01.
func MascararCPF(cpf string) string {
	d := checkout.Digitos(cpf)
	if len(d) != 11 {
		return "XXX.XXX.XXX-XX"
	}
	return fmt.Sprintf("%s.XXX.XXX-%s", d[:3], d[9:])
}

func formatarNumeros(numeros []int) []string {
	out := make([]string, len(numeros))
	for i, n := range numeros {
		out[i] = fmt.Sprintf("%04d", n)
	}
	return out
}
