package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation(nil), want: KindValidation},
		{name: "auth", err: Auth("unauthorized"), want: KindAuth},
		{name: "conflict", err: Conflict("User already exists"), want: KindConflict},
		{name: "credential", err: Credential(), want: KindCredential},
		{name: "wrapped conflict", err: fmt.Errorf("signup: %w", Conflict("dup")), want: KindConflict},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestInternal_UnwrapAndDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", Detail(err))
	assert.Equal(t, "Internal server error: connection refused", err.Error())
	assert.Equal(t, "plain", Detail(errors.New("plain")))
}
