package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// NumeroRepository controla os números de rifa; o índice único (campanha_id, numero) é a última barreira contra duplicidade.
type NumeroRepository struct {
	db *gorm.DB
}

func NewNumeroRepository(db *gorm.DB) *NumeroRepository {
	return &NumeroRepository{db: db}
}

type numeroModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PagamentoID string    `gorm:"column:pagamento_id"`
	CampanhaID  string    `gorm:"column:campanha_id"`
	Numero      int       `gorm:"column:numero"`
	Status      string    `gorm:"column:status"`
	CriadoEm    time.Time `gorm:"column:criado_em"`
}

func (numeroModel) TableName() string {
	return "numeros_rifa"
}

func (m numeroModel) toDomain() domain.NumeroRifa {
	return domain.NumeroRifa{
		ID:          domain.NumeroID(m.ID),
		PagamentoID: domain.PagamentoID(m.PagamentoID),
		CampanhaID:  domain.CampanhaID(m.CampanhaID),
		Numero:      m.Numero,
		Status:      domain.StatusNumero(m.Status),
		CriadoEm:    m.CriadoEm,
	}
}

func (r *NumeroRepository) MaiorNumero(ctx context.Context, campanhaID domain.CampanhaID) (int, error) {
	var maior int64
	err := conn(ctx, r.db).Model(&numeroModel{}).
		Select("COALESCE(MAX(numero), 0)").
		Where("campanha_id = ?", campanhaID).
		Row().
		Scan(&maior)
	if err != nil {
		return 0, fmt.Errorf("gorm numeros: maior numero: %w", err)
	}
	return int(maior), nil
}

func (r *NumeroRepository) InserirReservados(ctx context.Context, numeros []domain.NumeroRifa) error {
	if len(numeros) == 0 {
		return nil
	}

	models := make([]numeroModel, len(numeros))
	for i, n := range numeros {
		models[i] = numeroModel{
			ID:          string(n.ID),
			PagamentoID: string(n.PagamentoID),
			CampanhaID:  string(n.CampanhaID),
			Numero:      n.Numero,
			Status:      string(domain.NumeroReservado),
			CriadoEm:    n.CriadoEm,
		}
	}

	if err := conn(ctx, r.db).Create(&models).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("gorm numeros: inserir: %w", domain.ErrConflitoAlocacao)
		}
		return fmt.Errorf("gorm numeros: inserir: %w", err)
	}
	return nil
}

func (r *NumeroRepository) ListByPagamento(ctx context.Context, pagamentoID domain.PagamentoID) ([]domain.NumeroRifa, error) {
	var models []numeroModel
	if err := conn(ctx, r.db).
		Where("pagamento_id = ?", pagamentoID).
		Order("numero ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm numeros: listar por pagamento: %w", err)
	}

	result := make([]domain.NumeroRifa, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *NumeroRepository) MarcarPagos(ctx context.Context, pagamentoID domain.PagamentoID) (int64, error) {
	res := conn(ctx, r.db).Model(&numeroModel{}).
		Where("pagamento_id = ? AND status = ?", pagamentoID, string(domain.NumeroReservado)).
		Update("status", string(domain.NumeroPago))
	if res.Error != nil {
		return 0, fmt.Errorf("gorm numeros: marcar pagos: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Liberar apaga apenas números ainda reservados; números pagos nunca voltam ao estoque.
func (r *NumeroRepository) Liberar(ctx context.Context, pagamentoID domain.PagamentoID) (int64, error) {
	res := conn(ctx, r.db).
		Where("pagamento_id = ? AND status = ?", pagamentoID, string(domain.NumeroReservado)).
		Delete(&numeroModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm numeros: liberar: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NumeroRepository) ContarVendidos(ctx context.Context, campanhaID domain.CampanhaID) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).
		Model(&numeroModel{}).
		Where("campanha_id = ? AND status = ?", campanhaID, string(domain.NumeroPago)).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm numeros: contar vendidos: %w", err)
	}
	return total, nil
}

var _ domain.NumeroRepository = (*NumeroRepository)(nil)
