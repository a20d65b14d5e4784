package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("registro nao encontrado")
	ErrDadosInvalidos     = errors.New("dados invalidos")
	ErrStatusInvalido     = errors.New("status invalido")
	ErrTierDesconhecido   = errors.New("tier de preco desconhecido")
	ErrQuantidadeInvalida = errors.New("quantidade invalida")
	ErrConflitoAlocacao   = errors.New("conflito ao reservar numeros")
	ErrGateway            = errors.New("falha no gateway de pagamento")
	ErrDuplicado          = errors.New("registro duplicado")
)

type CampoInvalido struct {
	Campo    string `json:"field"`
	Mensagem string `json:"message"`
}

// ErroValidacao acumula todas as violações de entrada em vez de parar na primeira.
type ErroValidacao struct {
	Campos []CampoInvalido
}

func (e *ErroValidacao) Adicionar(campo, mensagem string) {
	e.Campos = append(e.Campos, CampoInvalido{Campo: campo, Mensagem: mensagem})
}

// OuNil devolve nil quando nada foi violado, para ser usado direto como retorno.
func (e *ErroValidacao) OuNil() error {
	if e == nil || len(e.Campos) == 0 {
		return nil
	}
	return e
}

func (e *ErroValidacao) Error() string {
	partes := make([]string, len(e.Campos))
	for i, c := range e.Campos {
		partes[i] = c.Campo + ": " + c.Mensagem
	}
	return ErrDadosInvalidos.Error() + ": " + strings.Join(partes, "; ")
}

func (e *ErroValidacao) Unwrap() error {
	return ErrDadosInvalidos
}
