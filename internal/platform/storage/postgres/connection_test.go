package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "duplicado traduzido", err: gorm.ErrDuplicatedKey, want: true},
		{name: "duplicado embrulhado", err: fmt.Errorf("gorm numero: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "mensagem parecida sem traducao", err: errors.New("valor viola unique constraint da coluna"), want: false},
		{name: "duplicate key em texto livre", err: errors.New("duplicate key no payload do gateway"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
