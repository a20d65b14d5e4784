package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Centavos guarda valores monetários em BRL como inteiro na menor unidade.
type Centavos int64

var cem = decimal.NewFromInt(100)

func (c Centavos) Vezes(quantidade int) Centavos {
	return c * Centavos(quantidade)
}

func (c Centavos) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formata com duas casas e ponto decimal, ex.: "65.00".
func (c Centavos) String() string {
	return c.Decimal().StringFixed(2)
}

// ParseCentavos aceita "65", "65.5" ou "65.00"; mais de duas casas decimais é rejeitado.
func ParseCentavos(s string) (Centavos, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: valor %q", ErrDadosInvalidos, s)
	}
	return CentavosDeDecimal(d)
}

func CentavosDeDecimal(d decimal.Decimal) (Centavos, error) {
	c := d.Mul(cem)
	if !c.IsInteger() {
		return 0, fmt.Errorf("%w: valor %s com mais de duas casas", ErrDadosInvalidos, d.String())
	}
	return Centavos(c.IntPart()), nil
}
