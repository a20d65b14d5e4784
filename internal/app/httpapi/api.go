// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para os serviços de checkout, conciliação e campanhas.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marcelojr/rifa-pix/internal/app/auth"
	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

// HeaderWebhookToken carrega o segredo compartilhado com o gateway.
const HeaderWebhookToken = "X-Webhook-Token"

const limiteCorpo = 1 << 20

type Dependencias struct {
	Checkout     domain.CheckoutService
	Conciliacao  domain.ConciliacaoService
	Campanhas    domain.CampanhaService
	Auth         domain.AuthService
	WebhookToken string
	Logger       *slog.Logger
}

// API empacota os handlers HTTP e as dependências de domínio.
type API struct {
	checkout     domain.CheckoutService
	conciliacao  domain.ConciliacaoService
	campanhas    domain.CampanhaService
	auth         domain.AuthService
	webhookToken string
	logger       *slog.Logger
}

func New(d Dependencias) *API {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &API{
		checkout:     d.Checkout,
		conciliacao:  d.Conciliacao,
		campanhas:    d.Campanhas,
		auth:         d.Auth,
		webhookToken: d.WebhookToken,
		logger:       d.Logger,
	}
}

// Router monta todas as rotas de negócio; health e métricas são penduradas pelo main.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	a.Register(r)
	return r
}

func (a *API) Register(r chi.Router) {
	r.Get("/healthz", a.handleHealthz)

	r.Get("/campaigns", a.listarCampanhas)
	r.Get("/campaigns/{id}", a.buscarCampanha)

	r.Post("/checkout", a.criarCheckout)
	r.Get("/payments/{id}", a.detalharPagamento)
	r.Post("/payments/{id}/reconcile", a.conciliarPagamento)

	r.Post("/webhooks/gateway", a.receberWebhook)

	r.Post("/admin/login", a.login)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(a.auth, a.logger))
		r.Post("/admin/campaigns", a.criarCampanha)
		r.Patch("/admin/campaigns/{id}/status", a.alterarStatusCampanha)
		r.Get("/admin/payments/{id}", a.detalharPagamentoAdmin)
		r.Post("/admin/payments/{id}/reconcile", a.conciliarPagamento)
	})
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) listarCampanhas(w http.ResponseWriter, r *http.Request) {
	campanhas, err := a.campanhas.ListarAtivas(r.Context())
	if err != nil {
		a.logger.Error("erro ao listar campanhas", "err", err)
		responderErro(w, err)
		return
	}

	resp := make([]campanhaResponse, 0, len(campanhas))
	for _, c := range campanhas {
		resp = append(resp, novaCampanhaResponse(c))
	}
	responderJSON(w, http.StatusOK, resp)
}

func (a *API) buscarCampanha(w http.ResponseWriter, r *http.Request) {
	id := domain.CampanhaID(chi.URLParam(r, "id"))
	campanha, err := a.campanhas.Buscar(r.Context(), id)
	if err != nil {
		a.logger.Warn("erro ao buscar campanha", "err", err, "campanha", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, novaCampanhaResponse(campanha))
}

func (a *API) criarCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodificar(r, &req); err != nil {
		a.logger.Warn("payload invalido no checkout", "err", err)
		metrics.ObserveCheckout("invalid_payload")
		responderJSON(w, http.StatusBadRequest, erroResponse{Erro: "payload invalido"})
		return
	}

	pedido := req.paraPedido()
	pedido.OrigemIP = ipCliente(r)

	recibo, err := a.checkout.Checkout(r.Context(), pedido)
	if err != nil {
		a.logger.Warn("checkout recusado", "err", err, "campanha", req.CampanhaID, "quantidade", req.Quantidade)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusCreated, novoCheckoutResponse(recibo))
}

func (a *API) detalharPagamento(w http.ResponseWriter, r *http.Request) {
	id := domain.PagamentoID(chi.URLParam(r, "id"))
	detalhe, err := a.checkout.Detalhar(r.Context(), id)
	if err != nil {
		a.logger.Warn("erro ao detalhar pagamento", "err", err, "pagamento", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, novoPagamentoResponse(detalhe, false))
}

func (a *API) detalharPagamentoAdmin(w http.ResponseWriter, r *http.Request) {
	id := domain.PagamentoID(chi.URLParam(r, "id"))
	detalhe, err := a.checkout.Detalhar(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, novoPagamentoResponse(detalhe, true))
}

// conciliarPagamento atende o polling do comprador e o botão do admin.
func (a *API) conciliarPagamento(w http.ResponseWriter, r *http.Request) {
	id := domain.PagamentoID(chi.URLParam(r, "id"))
	status, err := a.conciliacao.Conciliar(r.Context(), id)
	if err != nil {
		// Gateway fora do ar não encerra o polling: devolvemos o status atual.
		if errors.Is(err, domain.ErrGateway) && status != "" {
			a.logger.Warn("gateway indisponivel na conciliacao", "err", err, "pagamento", id)
			responderJSON(w, http.StatusOK, statusResponse{Status: string(status)})
			return
		}
		a.logger.Warn("erro ao conciliar pagamento", "err", err, "pagamento", id)
		responderErro(w, err)
		return
	}
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		a.logger.Info("conciliacao manual", "pagamento", id, "admin", p.Username, "status", status)
	}
	responderJSON(w, http.StatusOK, statusResponse{Status: string(status)})
}

func (a *API) receberWebhook(w http.ResponseWriter, r *http.Request) {
	if a.webhookToken == "" {
		metrics.ObserveWebhook("disabled")
		responderJSON(w, http.StatusServiceUnavailable, erroResponse{Erro: "webhook desabilitado"})
		return
	}
	recebido := r.Header.Get(HeaderWebhookToken)
	if subtle.ConstantTimeCompare([]byte(recebido), []byte(a.webhookToken)) != 1 {
		metrics.ObserveWebhook("unauthorized")
		responderJSON(w, http.StatusUnauthorized, erroResponse{Erro: "nao autorizado"})
		return
	}

	// O gateway manda campos que não controlamos; só o id da cobrança interessa.
	var req webhookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, limiteCorpo)).Decode(&req); err != nil || req.cobrancaID() == "" {
		metrics.ObserveWebhook("invalid_payload")
		responderJSON(w, http.StatusBadRequest, erroResponse{Erro: "payload invalido"})
		return
	}

	if err := a.conciliacao.Notificar(r.Context(), req.cobrancaID()); err != nil {
		metrics.ObserveWebhook("error")
		a.logger.Warn("falha ao processar webhook", "err", err, "cobranca", req.cobrancaID())
		responderErro(w, err)
		return
	}

	metrics.ObserveWebhook("accepted")
	responderJSON(w, http.StatusAccepted, statusResponse{Status: "recebido"})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodificar(r, &req); err != nil {
		responderJSON(w, http.StatusBadRequest, erroResponse{Erro: "payload invalido"})
		return
	}

	sessao, err := a.auth.Login(r.Context(), req.Username, req.Senha)
	if err != nil {
		a.logger.Warn("login admin recusado", "username", req.Username, "err", err)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, loginResponse{Token: sessao.Token, ExpiraEm: sessao.ExpiraEm})
}

func (a *API) criarCampanha(w http.ResponseWriter, r *http.Request) {
	var req campanhaRequest
	if err := decodificar(r, &req); err != nil {
		responderJSON(w, http.StatusBadRequest, erroResponse{Erro: "payload invalido"})
		return
	}

	nova, err := req.paraNovaCampanha()
	if err != nil {
		responderErro(w, err)
		return
	}

	campanha, err := a.campanhas.Criar(r.Context(), nova)
	if err != nil {
		a.logger.Warn("falha ao criar campanha", "err", err)
		responderErro(w, err)
		return
	}

	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		a.logger.Info("campanha criada", "campanha", campanha.ID, "admin", p.Username)
	}
	responderJSON(w, http.StatusCreated, novaCampanhaResponse(domain.CampanhaVitrine{Campanha: campanha}))
}

func (a *API) alterarStatusCampanha(w http.ResponseWriter, r *http.Request) {
	var req statusCampanhaRequest
	if err := decodificar(r, &req); err != nil {
		responderJSON(w, http.StatusBadRequest, erroResponse{Erro: "payload invalido"})
		return
	}

	id := domain.CampanhaID(chi.URLParam(r, "id"))
	campanha, err := a.campanhas.AlterarStatus(r.Context(), id, domain.StatusCampanha(req.Status))
	if err != nil {
		a.logger.Warn("falha ao alterar status da campanha", "err", err, "campanha", id)
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, novaCampanhaResponse(domain.CampanhaVitrine{Campanha: campanha}))
}

// decodificar recusa campos desconhecidos e corpo com mais de um documento JSON.
func decodificar(r *http.Request, destino any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limiteCorpo))
	dec.DisallowUnknownFields()
	if err := dec.Decode(destino); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("conteudo apos o documento json")
	}
	return nil
}

func ipCliente(r *http.Request) string {
	// middleware.RealIP já trocou RemoteAddr pelo X-Forwarded-For quando presente.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
