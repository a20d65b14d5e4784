package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// CampanhaRepository mapeia campanhas e sua tabela de preços para o GORM.
type CampanhaRepository struct {
	db *gorm.DB
}

func NewCampanhaRepository(db *gorm.DB) *CampanhaRepository {
	return &CampanhaRepository{db: db}
}

type campanhaModel struct {
	ID            string                               `gorm:"column:id;primaryKey"`
	Titulo        string                               `gorm:"column:titulo"`
	Descricao     string                               `gorm:"column:descricao"`
	ImagemURL     string                               `gorm:"column:imagem_url"`
	Status        string                               `gorm:"column:status"`
	PrecoUnitario int64                                `gorm:"column:preco_unitario"`
	PrecosCombo   datatypes.JSONType[map[string]int64] `gorm:"column:precos_combo"`
	DataSorteio   time.Time                            `gorm:"column:data_sorteio"`
	CriadoEm      time.Time                            `gorm:"column:criado_em"`
	AtualizadoEm  time.Time                            `gorm:"column:atualizado_em"`
}

func (campanhaModel) TableName() string {
	return "campanhas"
}

func (m campanhaModel) toDomain() domain.Campanha {
	combos := make(domain.PrecosCombo, len(m.PrecosCombo.Data()))
	for tier, preco := range m.PrecosCombo.Data() {
		combos[tier] = domain.Centavos(preco)
	}
	return domain.Campanha{
		ID:            domain.CampanhaID(m.ID),
		Titulo:        m.Titulo,
		Descricao:     m.Descricao,
		ImagemURL:     m.ImagemURL,
		Status:        domain.StatusCampanha(m.Status),
		PrecoUnitario: domain.Centavos(m.PrecoUnitario),
		PrecosCombo:   combos,
		DataSorteio:   m.DataSorteio,
		CriadoEm:      m.CriadoEm,
		AtualizadoEm:  m.AtualizadoEm,
	}
}

func combosJSON(precos domain.PrecosCombo) datatypes.JSONType[map[string]int64] {
	raw := make(map[string]int64, len(precos))
	for tier, preco := range precos {
		raw[tier] = int64(preco)
	}
	return datatypes.NewJSONType(raw)
}

func fromDomainCampanha(c domain.Campanha) campanhaModel {
	return campanhaModel{
		ID:            string(c.ID),
		Titulo:        c.Titulo,
		Descricao:     c.Descricao,
		ImagemURL:     c.ImagemURL,
		Status:        string(c.Status),
		PrecoUnitario: int64(c.PrecoUnitario),
		PrecosCombo:   combosJSON(c.PrecosCombo),
		DataSorteio:   c.DataSorteio,
		CriadoEm:      c.CriadoEm,
		AtualizadoEm:  c.AtualizadoEm,
	}
}

func (r *CampanhaRepository) Create(ctx context.Context, c domain.Campanha) error {
	model := fromDomainCampanha(c)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm campanha: inserir: %w", err)
	}
	return nil
}

func (r *CampanhaRepository) Update(ctx context.Context, c domain.Campanha) error {
	model := fromDomainCampanha(c)
	res := conn(ctx, r.db).Model(&campanhaModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"titulo":         model.Titulo,
			"descricao":      model.Descricao,
			"imagem_url":     model.ImagemURL,
			"status":         model.Status,
			"preco_unitario": model.PrecoUnitario,
			"precos_combo":   model.PrecosCombo,
			"data_sorteio":   model.DataSorteio,
			"atualizado_em":  model.AtualizadoEm,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm campanha: atualizar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CampanhaRepository) FindByID(ctx context.Context, id domain.CampanhaID) (domain.Campanha, error) {
	var model campanhaModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Campanha{}, domain.ErrNotFound
		}
		return domain.Campanha{}, fmt.Errorf("gorm campanha: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *CampanhaRepository) ListAtivas(ctx context.Context) ([]domain.Campanha, error) {
	var models []campanhaModel
	if err := conn(ctx, r.db).
		Where("status = ?", string(domain.CampanhaAtiva)).
		Order("data_sorteio ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm campanha: listar ativas: %w", err)
	}

	result := make([]domain.Campanha, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.CampanhaRepository = (*CampanhaRepository)(nil)
