// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// Models lista as tabelas na ordem de criação; testes reaproveitam para montar o SQLite.
func Models() []any {
	return []any{
		&domain.Campanha{},
		&domain.Comprador{},
		&domain.Pagamento{},
		&domain.NumeroRifa{},
		&domain.AdminUsuario{},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202610190001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("admin_usuarios", "numeros_rifa", "pagamentos", "compradores", "campanhas")
			},
		},
		{
			ID: "202610200001_pagamentos_tentativas",
			Migrate: func(tx *gorm.DB) error {
				// Bancos criados pela versão anterior não têm as colunas de tentativa.
				return tx.AutoMigrate(&domain.Pagamento{})
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropColumn(&domain.Pagamento{}, "ultima_tentativa_em"); err != nil {
					return err
				}
				return tx.Migrator().DropColumn(&domain.Pagamento{}, "tentativas_conciliacao")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
