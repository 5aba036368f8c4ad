package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCPF(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"111.111.111-11", true},
		{"123.456.789-09", true},
		{"", false},
		{"11111111111", false},
		{"111.111.111.11", false},
		{"111.111.111-1", false},
		{"aaa.bbb.ccc-dd", false},
		{" 111.111.111-11", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCPF(tt.in))
		})
	}
}

type registration struct {
	Name string `json:"name" validate:"required"`
	CPF  string `json:"cpf" validate:"required,cpf"`
}

func TestRegisterAndMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v, nil))

	assert.NoError(t, v.Struct(registration{Name: "Ana", CPF: "111.111.111-11"}))

	err := v.Struct(registration{CPF: "111"})
	require.Error(t, err)

	msgs := Messages(err)
	require.Len(t, msgs, 2)
	assert.Equal(t, FieldError{Field: "name", Message: "name is required"}, msgs[0])
	assert.Equal(t, FieldError{Field: "cpf", Message: "cpf must match XXX.XXX.XXX-XX"}, msgs[1])
	assert.Equal(t, "name is required; cpf must match XXX.XXX.XXX-XX", Summary(err))
}

func TestMessages_PlainError(t *testing.T) {
	msgs := Messages(errors.New("unexpected EOF"))
	assert.Equal(t, []FieldError{{Message: "unexpected EOF"}}, msgs)
}
