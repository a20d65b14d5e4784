package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type adminModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Username  string    `gorm:"column:username"`
	SenhaHash string    `gorm:"column:senha_hash"`
	CriadoEm  time.Time `gorm:"column:criado_em"`
}

func (adminModel) TableName() string {
	return "admin_usuarios"
}

func (r *AdminRepository) Create(ctx context.Context, a domain.AdminUsuario) error {
	model := adminModel{
		ID:        string(a.ID),
		Username:  a.Username,
		SenhaHash: a.SenhaHash,
		CriadoEm:  a.CriadoEm,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("gorm admin: inserir %q: %w", a.Username, domain.ErrDuplicado)
		}
		return fmt.Errorf("gorm admin: inserir: %w", err)
	}
	return nil
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (domain.AdminUsuario, error) {
	var model adminModel
	if err := conn(ctx, r.db).First(&model, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AdminUsuario{}, domain.ErrNotFound
		}
		return domain.AdminUsuario{}, fmt.Errorf("gorm admin: buscar username: %w", err)
	}
	return domain.AdminUsuario{
		ID:        domain.AdminID(model.ID),
		Username:  model.Username,
		SenhaHash: model.SenhaHash,
		CriadoEm:  model.CriadoEm,
	}, nil
}

var _ domain.AdminRepository = (*AdminRepository)(nil)
