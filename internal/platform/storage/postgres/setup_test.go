package postgres

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
	"github.com/marcelojr/rifa-pix/internal/platform/storage/sqlitetest"
)

func setupPostgres(t *testing.T) *gorm.DB {
	return sqlitetest.Open(t)
}

func novaCampanha(gen *ids.Generator, titulo string, status domain.StatusCampanha, sorteio time.Time) domain.Campanha {
	now := time.Now().UTC()
	return domain.Campanha{
		ID:            domain.CampanhaID(gen.New()),
		Titulo:        titulo,
		Descricao:     "Descrição " + titulo,
		Status:        status,
		PrecoUnitario: 500,
		PrecosCombo:   domain.PrecosCombo{"+70": 450},
		DataSorteio:   sorteio,
		CriadoEm:      now,
		AtualizadoEm:  now,
	}
}

func novoPagamento(gen *ids.Generator, campanhaID domain.CampanhaID, status domain.StatusPagamento, expiraEm time.Time) domain.Pagamento {
	return domain.Pagamento{
		ID:          domain.PagamentoID(gen.New()),
		CompradorID: domain.CompradorID(gen.New()),
		CampanhaID:  campanhaID,
		Valor:       1500,
		Quantidade:  3,
		Tier:        domain.TierUnitario,
		CobrancaID:  "cob-" + gen.New(),
		CodigoPix:   "00020126pix",
		Status:      status,
		CriadoEm:    expiraEm.Add(-10 * time.Minute),
		ExpiraEm:    expiraEm,
	}
}
