// Pacote sqlitetest sobe um banco SQLite em memória com o schema da aplicação para testes.
package sqlitetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marcelojr/rifa-pix/internal/platform/migrations"
)

// Open usa TranslateError como o Postgres de produção, para que violações de índice único virem gorm.ErrDuplicatedKey.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Um banco ":memory:" só existe dentro de uma conexão.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(migrations.Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}
