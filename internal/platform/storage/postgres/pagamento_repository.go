package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// PagamentoRepository persiste pagamentos; mudanças de status passam sempre por update condicional.
type PagamentoRepository struct {
	db *gorm.DB
}

func NewPagamentoRepository(db *gorm.DB) *PagamentoRepository {
	return &PagamentoRepository{db: db}
}

type pagamentoModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	CompradorID string     `gorm:"column:comprador_id"`
	CampanhaID  string     `gorm:"column:campanha_id"`
	Valor       int64      `gorm:"column:valor"`
	Quantidade  int        `gorm:"column:quantidade"`
	Tier        string     `gorm:"column:tier"`
	CobrancaID  string     `gorm:"column:cobranca_id"`
	CodigoPix   string     `gorm:"column:codigo_pix"`
	QRCodeURL   string     `gorm:"column:qr_code_url"`
	Status      string     `gorm:"column:status"`
	CriadoEm    time.Time  `gorm:"column:criado_em"`
	ExpiraEm    time.Time  `gorm:"column:expira_em"`
	PagoEm      *time.Time `gorm:"column:pago_em"`
	CanceladoEm *time.Time `gorm:"column:cancelado_em"`
	Tentativas  int        `gorm:"column:tentativas_conciliacao"`
	UltimaEm    *time.Time `gorm:"column:ultima_tentativa_em"`
}

func (pagamentoModel) TableName() string {
	return "pagamentos"
}

func (m pagamentoModel) toDomain() domain.Pagamento {
	return domain.Pagamento{
		ID:          domain.PagamentoID(m.ID),
		CompradorID: domain.CompradorID(m.CompradorID),
		CampanhaID:  domain.CampanhaID(m.CampanhaID),
		Valor:       domain.Centavos(m.Valor),
		Quantidade:  m.Quantidade,
		Tier:        m.Tier,
		CobrancaID:  m.CobrancaID,
		CodigoPix:   m.CodigoPix,
		QRCodeURL:   m.QRCodeURL,
		Status:      domain.StatusPagamento(m.Status),
		CriadoEm:    m.CriadoEm,
		ExpiraEm:    m.ExpiraEm,
		PagoEm:      m.PagoEm,
		CanceladoEm: m.CanceladoEm,

		TentativasConciliacao: m.Tentativas,
		UltimaTentativaEm:     m.UltimaEm,
	}
}

func fromDomainPagamento(p domain.Pagamento) pagamentoModel {
	return pagamentoModel{
		ID:          string(p.ID),
		CompradorID: string(p.CompradorID),
		CampanhaID:  string(p.CampanhaID),
		Valor:       int64(p.Valor),
		Quantidade:  p.Quantidade,
		Tier:        p.Tier,
		CobrancaID:  p.CobrancaID,
		CodigoPix:   p.CodigoPix,
		QRCodeURL:   p.QRCodeURL,
		Status:      string(p.Status),
		CriadoEm:    p.CriadoEm,
		ExpiraEm:    p.ExpiraEm,
		PagoEm:      p.PagoEm,
		CanceladoEm: p.CanceladoEm,
		Tentativas:  p.TentativasConciliacao,
		UltimaEm:    p.UltimaTentativaEm,
	}
}

func statusStrings(status []domain.StatusPagamento) []string {
	out := make([]string, len(status))
	for i, s := range status {
		out[i] = string(s)
	}
	return out
}

func (r *PagamentoRepository) Create(ctx context.Context, p domain.Pagamento) error {
	model := fromDomainPagamento(p)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm pagamento: inserir: %w", err)
	}
	return nil
}

func (r *PagamentoRepository) FindByID(ctx context.Context, id domain.PagamentoID) (domain.Pagamento, error) {
	var model pagamentoModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Pagamento{}, domain.ErrNotFound
		}
		return domain.Pagamento{}, fmt.Errorf("gorm pagamento: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *PagamentoRepository) FindByCobrancaID(ctx context.Context, cobrancaID string) (domain.Pagamento, error) {
	var model pagamentoModel
	if err := conn(ctx, r.db).First(&model, "cobranca_id = ?", cobrancaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Pagamento{}, domain.ErrNotFound
		}
		return domain.Pagamento{}, fmt.Errorf("gorm pagamento: buscar cobranca: %w", err)
	}
	return model.toDomain(), nil
}

func (r *PagamentoRepository) TransitarStatus(ctx context.Context, id domain.PagamentoID, origens []domain.StatusPagamento, destino domain.StatusPagamento, em time.Time) (bool, error) {
	if len(origens) == 0 {
		return false, nil
	}

	campos := map[string]any{"status": string(destino)}
	switch destino {
	case domain.PagamentoPago:
		campos["pago_em"] = em
	case domain.PagamentoCancelado:
		campos["cancelado_em"] = em
	case domain.PagamentoPendente, domain.PagamentoAguardandoConfirmacao:
	}

	// O filtro por status atual garante que duas conciliações concorrentes não apliquem a mesma transição.
	res := conn(ctx, r.db).Model(&pagamentoModel{}).
		Where("id = ? AND status IN ?", id, statusStrings(origens)).
		Updates(campos)
	if res.Error != nil {
		return false, fmt.Errorf("gorm pagamento: transitar para %s: %w", destino, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PagamentoRepository) ListAbertosExpirados(ctx context.Context, agora time.Time, limite int) ([]domain.Pagamento, error) {
	var models []pagamentoModel
	q := conn(ctx, r.db).
		Where("status IN ? AND expira_em < ?", statusStrings(domain.StatusAbertos()), agora).
		// Sem tentativa anterior vale o vencimento; com falha, o instante da última tentativa.
		Order("COALESCE(ultima_tentativa_em, expira_em) ASC").
		Order("expira_em ASC")
	if limite > 0 {
		q = q.Limit(limite)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm pagamento: listar expirados: %w", err)
	}

	result := make([]domain.Pagamento, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *PagamentoRepository) RegistrarTentativa(ctx context.Context, id domain.PagamentoID, em time.Time) error {
	res := conn(ctx, r.db).Model(&pagamentoModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"tentativas_conciliacao": gorm.Expr("tentativas_conciliacao + 1"),
			"ultima_tentativa_em":    em,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm pagamento: registrar tentativa: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.PagamentoRepository = (*PagamentoRepository)(nil)
