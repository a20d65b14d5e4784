package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

var validate = novoValidador()

func novoValidador() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("campo")
	})
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return len(Digitos(fl.Field().String())) == 11
	})
	_ = v.RegisterValidation("celular", func(fl validator.FieldLevel) bool {
		return len(Digitos(fl.Field().String())) >= 10
	})
	return v
}

type entradaCheckout struct {
	Nome       string `campo:"buyer.name" validate:"required,max=200"`
	CPF        string `campo:"buyer.taxId" validate:"cpf"`
	Celular    string `campo:"buyer.phone" validate:"celular"`
	Email      string `campo:"buyer.email" validate:"required,email,max=254"`
	Endereco   string `campo:"buyer.address" validate:"max=500"`
	Quantidade int    `campo:"quantity" validate:"min=1,max=999"`
}

// Digitos remove pontuação de CPF e telefone.
func Digitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validarPedido devolve o comprador normalizado ou um *domain.ErroValidacao com todas as violações.
func validarPedido(p domain.Pedido) (domain.DadosComprador, error) {
	entrada := entradaCheckout{
		Nome:       strings.TrimSpace(p.Comprador.Nome),
		CPF:        p.Comprador.CPF,
		Celular:    p.Comprador.Celular,
		Email:      strings.TrimSpace(p.Comprador.Email),
		Endereco:   strings.TrimSpace(p.Comprador.Endereco),
		Quantidade: p.Quantidade,
	}

	erro := &domain.ErroValidacao{}
	if p.CampanhaID == "" {
		erro.Adicionar("campaignId", "obrigatorio")
	}

	if err := validate.Struct(entrada); err != nil {
		var violacoes validator.ValidationErrors
		if !errors.As(err, &violacoes) {
			return domain.DadosComprador{}, fmt.Errorf("checkout: validar pedido: %w", err)
		}
		for _, v := range violacoes {
			erro.Adicionar(v.Field(), mensagem(v))
		}
	}

	if err := erro.OuNil(); err != nil {
		return domain.DadosComprador{}, err
	}

	return domain.DadosComprador{
		Nome:     entrada.Nome,
		CPF:      Digitos(entrada.CPF),
		Celular:  Digitos(entrada.Celular),
		Email:    entrada.Email,
		Endereco: entrada.Endereco,
	}, nil
}

func mensagem(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "obrigatorio"
	case "email":
		return "email invalido"
	case "cpf":
		return "cpf deve ter 11 digitos"
	case "celular":
		return "celular deve ter ao menos 10 digitos"
	case "min", "max":
		if v.Kind() == reflect.Int {
			return fmt.Sprintf("deve estar entre %d e %d", QuantidadeMinima, QuantidadeMaxima)
		}
		return "tamanho maximo de " + v.Param() + " caracteres"
	}
	return "invalido"
}
