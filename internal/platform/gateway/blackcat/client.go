// Pacote blackcat implementa domain.GatewayPagamento sobre a API REST da BlackCat Pagamentos.
package blackcat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/metrics"
)

const DefaultBaseURL = "https://api.blackcatpagamentos.com/v1"

type Config struct {
	BaseURL   string
	PublicKey string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	publicKey string
	secretKey string
	http      *http.Client
	logger    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   base,
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type criarTransacaoRequest struct {
	Amount        int64            `json:"amount"`
	PaymentMethod string           `json:"paymentMethod"`
	Metadata      metadadosRequest `json:"metadata"`
}

type metadadosRequest struct {
	CampaignID string `json:"campaign_id"`
	BuyerID    string `json:"buyer_id"`
	Quantity   int    `json:"quantity"`
	ComboType  string `json:"combo_type,omitempty"`
}

type erroAPI struct {
	Message string `json:"message"`
}

type transacaoResponse struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	PixCode   string   `json:"pix_code"`
	QRCodeURL string   `json:"qr_code_url"`
	ExpiresAt string   `json:"expires_at"`
	Message   string   `json:"message"`
	Error     *erroAPI `json:"error"`
}

func (c *Client) CriarCobranca(ctx context.Context, valor domain.Centavos, meta domain.MetadadosCobranca) (domain.Cobranca, error) {
	if valor <= 0 {
		return domain.Cobranca{}, fmt.Errorf("%w: valor %s nao positivo", domain.ErrGateway, valor)
	}

	tier := meta.Tier
	if tier == domain.TierUnitario {
		tier = ""
	}
	body := criarTransacaoRequest{
		Amount:        int64(valor),
		PaymentMethod: "pix",
		Metadata: metadadosRequest{
			CampaignID: string(meta.CampanhaID),
			BuyerID:    string(meta.CompradorID),
			Quantity:   meta.Quantidade,
			ComboType:  tier,
		},
	}

	var resp transacaoResponse
	if err := c.do(ctx, "criar_cobranca", http.MethodPost, "/transactions", body, &resp); err != nil {
		return domain.Cobranca{}, err
	}
	if resp.ID == "" || resp.PixCode == "" {
		return domain.Cobranca{}, fmt.Errorf("%w: resposta sem id ou codigo pix", domain.ErrGateway)
	}

	cobranca := domain.Cobranca{
		ID:        resp.ID,
		CodigoPix: resp.PixCode,
		QRCodeURL: resp.QRCodeURL,
	}
	if resp.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
			cobranca.ExpiraEm = t.UTC()
		}
	}
	return cobranca, nil
}

func (c *Client) StatusCobranca(ctx context.Context, cobrancaID string) (domain.StatusCobranca, error) {
	if cobrancaID == "" {
		return "", fmt.Errorf("%w: id de cobranca vazio", domain.ErrGateway)
	}

	var resp transacaoResponse
	if err := c.do(ctx, "status_cobranca", http.MethodGet, "/transactions/"+url.PathEscape(cobrancaID), nil, &resp); err != nil {
		return "", err
	}
	if resp.Status == "" {
		return "", fmt.Errorf("%w: resposta sem status", domain.ErrGateway)
	}

	status := mapearStatus(resp.Status)
	if status == domain.CobrancaPendente && !strings.EqualFold(resp.Status, "pending") {
		c.logger.Info("status do gateway tratado como pendente", "cobranca", cobrancaID, "status_gateway", resp.Status)
	}
	return status, nil
}

// mapearStatus traduz o vocabulário do gateway; qualquer estado desconhecido conta como pendente.
func mapearStatus(s string) domain.StatusCobranca {
	switch strings.ToLower(s) {
	case "paid", "approved":
		return domain.CobrancaPaga
	case "expired":
		return domain.CobrancaExpirada
	case "cancelled", "canceled", "refused", "refunded", "chargedback":
		return domain.CobrancaCancelada
	default:
		return domain.CobrancaPendente
	}
}

func (c *Client) do(ctx context.Context, operacao, method, path string, in, out any) error {
	inicio := time.Now()
	defer func() {
		metrics.ObserveGatewayDuration(operacao, time.Since(inicio).Seconds())
	}()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: serializar requisicao: %v", domain.ErrGateway, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: montar requisicao: %v", domain.ErrGateway, err)
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrGateway, operacao, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: ler resposta: %v", domain.ErrGateway, operacao, err)
	}

	var envelope transacaoResponse
	_ = json.Unmarshal(raw, &envelope)

	if res.StatusCode >= http.StatusBadRequest {
		msg := envelope.Message
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("%w: %s: http %d: %s", domain.ErrGateway, operacao, res.StatusCode, msg)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrGateway, operacao, envelope.Error.Message)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: resposta invalida: %v", domain.ErrGateway, operacao, err)
	}
	return nil
}

var _ domain.GatewayPagamento = (*Client)(nil)
