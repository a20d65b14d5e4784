package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcelojr/rifa-pix/internal/app/auth"
	"github.com/marcelojr/rifa-pix/internal/app/checkout"
	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/antifraude"
)

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// responderErro centraliza o mapeamento de erros de domínio para status HTTP.
func responderErro(w http.ResponseWriter, err error) {
	var validacao *domain.ErroValidacao
	if errors.As(err, &validacao) {
		responderJSON(w, http.StatusUnprocessableEntity, erroResponse{Erro: domain.ErrDadosInvalidos.Error(), Campos: validacao.Campos})
		return
	}

	status := http.StatusInternalServerError
	mensagem := "erro interno"

	switch {
	case errors.Is(err, domain.ErrTierDesconhecido):
		status, mensagem = http.StatusBadRequest, domain.ErrTierDesconhecido.Error()
	case errors.Is(err, domain.ErrQuantidadeInvalida):
		responderJSON(w, http.StatusUnprocessableEntity, erroResponse{
			Erro:   domain.ErrDadosInvalidos.Error(),
			Campos: []domain.CampoInvalido{{Campo: "quantity", Mensagem: "deve estar entre 1 e 999"}},
		})
		return
	case errors.Is(err, domain.ErrStatusInvalido), errors.Is(err, domain.ErrDadosInvalidos):
		status, mensagem = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, checkout.ErrCampanhaNaoEncontrada):
		status, mensagem = http.StatusNotFound, checkout.ErrCampanhaNaoEncontrada.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, mensagem = http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, checkout.ErrCampanhaInativa):
		status, mensagem = http.StatusConflict, checkout.ErrCampanhaInativa.Error()
	case errors.Is(err, domain.ErrConflitoAlocacao):
		status, mensagem = http.StatusConflict, domain.ErrConflitoAlocacao.Error()
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		status, mensagem = http.StatusTooManyRequests, antifraude.ErrRateLimitExceeded.Error()
	case errors.Is(err, domain.ErrGateway):
		status, mensagem = http.StatusBadGateway, domain.ErrGateway.Error()
	case errors.Is(err, auth.ErrCredenciaisInvalidas), errors.Is(err, auth.ErrTokenInvalido):
		status, mensagem = http.StatusUnauthorized, auth.ErrCredenciaisInvalidas.Error()
	}

	responderJSON(w, status, erroResponse{Erro: mensagem})
}
