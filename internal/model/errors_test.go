package model

import (
	"errors"
	"testing"
)

func TestClientError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ClientError
		want string
	}{
		{
			name: "plain stage error",
			err: &ClientError{
				Stage:  "catálogo",
				Detail: "algo salió mal",
			},
			want: "catálogo: algo salió mal",
		},
		{
			name: "service error includes status and body",
			err: &ClientError{
				Stage:  "pedido",
				Detail: "stock insuficiente",
				Status: 500,
			},
			want: "pedido: el servidor respondió con el estado 500: stock insuficiente",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientError_Sentinels(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"network", NewNetworkError("catálogo", cause), ErrNetwork},
		{"parse", NewParseError("factura", cause), ErrParse},
		{"validation", NewValidationError("cliente_id", "requerido"), ErrInvalid},
		{"service", NewServiceError("pedido", 502, "bad gateway"), ErrService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestNewServiceError_KeepsBodyVerbatim(t *testing.T) {
	body := `<response><error>Stock insuficiente para producto ID 3</error></response>`
	err := NewServiceError("pedido", 400, body)

	if err.Detail != body {
		t.Errorf("Detail = %q, want the body unchanged", err.Detail)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
}

func TestNewValidationError_NoWrappedCause(t *testing.T) {
	err := NewValidationError("cliente_id", "requerido")
	if !errors.Is(err, ErrInvalid) {
		t.Error("validation error should unwrap to ErrInvalid")
	}
	if err.Status != 0 {
		t.Errorf("Status = %d, want 0 for non-service errors", err.Status)
	}
}
