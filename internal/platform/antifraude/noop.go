package antifraude

import (
	"context"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// Noop representa uma estratégia de antifraude desabilitada.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(ctx context.Context, tentativa domain.TentativaCompra) error {
	return nil
}

var _ domain.Antifraude = Noop{}
