package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

type txKey struct{}

// Transactor abre transações GORM e as propaga pelo contexto para os repositórios.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		// Já estamos dentro de uma transação: reaproveitamos em vez de abrir outra.
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn devolve a transação corrente, se houver, ou a conexão padrão.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var _ domain.Transactor = (*Transactor)(nil)
