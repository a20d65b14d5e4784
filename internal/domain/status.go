package domain

import "fmt"

type StatusCampanha string

const (
	CampanhaAtiva    StatusCampanha = "active"
	CampanhaInativa  StatusCampanha = "inactive"
	CampanhaSorteada StatusCampanha = "drawn"
)

func ParseStatusCampanha(s string) (StatusCampanha, error) {
	switch st := StatusCampanha(s); st {
	case CampanhaAtiva, CampanhaInativa, CampanhaSorteada:
		return st, nil
	}
	return "", fmt.Errorf("%w: campanha %q", ErrStatusInvalido, s)
}

type StatusPagamento string

const (
	PagamentoPendente              StatusPagamento = "pending"
	PagamentoAguardandoConfirmacao StatusPagamento = "awaiting_confirmation"
	PagamentoPago                  StatusPagamento = "paid"
	PagamentoCancelado             StatusPagamento = "cancelled"
)

// StatusAbertos lista os estados a partir dos quais o pagamento ainda pode ser conciliado.
func StatusAbertos() []StatusPagamento {
	return []StatusPagamento{PagamentoPendente, PagamentoAguardandoConfirmacao}
}

func ParseStatusPagamento(s string) (StatusPagamento, error) {
	switch st := StatusPagamento(s); st {
	case PagamentoPendente, PagamentoAguardandoConfirmacao, PagamentoPago, PagamentoCancelado:
		return st, nil
	}
	return "", fmt.Errorf("%w: pagamento %q", ErrStatusInvalido, s)
}

func (s StatusPagamento) Aberto() bool {
	switch s {
	case PagamentoPendente, PagamentoAguardandoConfirmacao:
		return true
	case PagamentoPago, PagamentoCancelado:
		return false
	}
	return false
}

func (s StatusPagamento) Terminal() bool {
	switch s {
	case PagamentoPago, PagamentoCancelado:
		return true
	case PagamentoPendente, PagamentoAguardandoConfirmacao:
		return false
	}
	return false
}

// PodeTransitarPara codifica a máquina de estados do pagamento; pago e cancelado são finais.
func (s StatusPagamento) PodeTransitarPara(destino StatusPagamento) bool {
	switch s {
	case PagamentoPendente:
		switch destino {
		case PagamentoAguardandoConfirmacao, PagamentoPago, PagamentoCancelado:
			return true
		case PagamentoPendente:
			return false
		}
	case PagamentoAguardandoConfirmacao:
		switch destino {
		case PagamentoPago, PagamentoCancelado:
			return true
		case PagamentoPendente, PagamentoAguardandoConfirmacao:
			return false
		}
	case PagamentoPago, PagamentoCancelado:
		return false
	}
	return false
}

// OrigensPara devolve os estados que podem levar ao destino, usados em updates condicionais.
func OrigensPara(destino StatusPagamento) []StatusPagamento {
	var origens []StatusPagamento
	for _, s := range []StatusPagamento{PagamentoPendente, PagamentoAguardandoConfirmacao, PagamentoPago, PagamentoCancelado} {
		if s.PodeTransitarPara(destino) {
			origens = append(origens, s)
		}
	}
	return origens
}

type StatusNumero string

const (
	NumeroReservado StatusNumero = "reserved"
	NumeroPago      StatusNumero = "paid"
)

// StatusCobranca é o estado da cobrança PIX do lado do gateway.
type StatusCobranca string

const (
	CobrancaPendente  StatusCobranca = "pending"
	CobrancaPaga      StatusCobranca = "paid"
	CobrancaExpirada  StatusCobranca = "expired"
	CobrancaCancelada StatusCobranca = "cancelled"
)
