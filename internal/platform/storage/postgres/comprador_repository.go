package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// CompradorRepository só insere e lê: compradores nunca são atualizados nem deduplicados.
type CompradorRepository struct {
	db *gorm.DB
}

func NewCompradorRepository(db *gorm.DB) *CompradorRepository {
	return &CompradorRepository{db: db}
}

type compradorModel struct {
	ID       string    `gorm:"column:id;primaryKey"`
	Nome     string    `gorm:"column:nome"`
	CPF      string    `gorm:"column:cpf"`
	Celular  string    `gorm:"column:celular"`
	Email    string    `gorm:"column:email"`
	Endereco string    `gorm:"column:endereco"`
	CriadoEm time.Time `gorm:"column:criado_em"`
}

func (compradorModel) TableName() string {
	return "compradores"
}

func (m compradorModel) toDomain() domain.Comprador {
	return domain.Comprador{
		ID:       domain.CompradorID(m.ID),
		Nome:     m.Nome,
		CPF:      m.CPF,
		Celular:  m.Celular,
		Email:    m.Email,
		Endereco: m.Endereco,
		CriadoEm: m.CriadoEm,
	}
}

func (r *CompradorRepository) Create(ctx context.Context, c domain.Comprador) error {
	model := compradorModel{
		ID:       string(c.ID),
		Nome:     c.Nome,
		CPF:      c.CPF,
		Celular:  c.Celular,
		Email:    c.Email,
		Endereco: c.Endereco,
		CriadoEm: c.CriadoEm,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm comprador: inserir: %w", err)
	}
	return nil
}

func (r *CompradorRepository) FindByID(ctx context.Context, id domain.CompradorID) (domain.Comprador, error) {
	var model compradorModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Comprador{}, domain.ErrNotFound
		}
		return domain.Comprador{}, fmt.Errorf("gorm comprador: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

var _ domain.CompradorRepository = (*CompradorRepository)(nil)
