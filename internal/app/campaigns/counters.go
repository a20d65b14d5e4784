package campaigns

import (
	"fmt"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

func CounterKeyVendidos(id domain.CampanhaID) string {
	return fmt.Sprintf("campanha:%s:vendidos", id)
}
