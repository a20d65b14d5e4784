package campaigns

import (
	"net/url"
	"strings"
	"time"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

// validarNovaCampanha acumula todas as violações, no mesmo formato do checkout.
func validarNovaCampanha(n domain.NovaCampanha, agora time.Time) error {
	erro := &domain.ErroValidacao{}

	if strings.TrimSpace(n.Titulo) == "" {
		erro.Adicionar("title", "obrigatorio")
	}
	if strings.TrimSpace(n.Descricao) == "" {
		erro.Adicionar("description", "obrigatorio")
	}
	if img := strings.TrimSpace(n.ImagemURL); img == "" {
		erro.Adicionar("imageUrl", "obrigatorio")
	} else if u, err := url.Parse(img); err != nil || u.Scheme == "" || u.Host == "" {
		erro.Adicionar("imageUrl", "url invalida")
	}
	if n.PrecoUnitario <= 0 {
		erro.Adicionar("unitPrice", "deve ser maior que zero")
	}
	for tier, preco := range n.PrecosCombo {
		rotulo := strings.TrimSpace(tier)
		switch {
		case rotulo == "":
			erro.Adicionar("comboPrices", "rotulo vazio")
		case rotulo == domain.TierUnitario:
			erro.Adicionar("comboPrices."+rotulo, "rotulo reservado")
		case preco <= 0:
			erro.Adicionar("comboPrices."+rotulo, "deve ser maior que zero")
		}
	}
	if n.DataSorteio.IsZero() {
		erro.Adicionar("drawDate", "obrigatorio")
	} else if !n.DataSorteio.After(agora) {
		erro.Adicionar("drawDate", "deve estar no futuro")
	}

	return erro.OuNil()
}
