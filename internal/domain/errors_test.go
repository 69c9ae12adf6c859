package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "not found error",
			err:  ErrOrderNotFound,
			want: true,
		},
		{
			name: "wrapped not found error",
			err:  fmt.Errorf("find order VDW-2025-001: %w", ErrOrderNotFound),
			want: true,
		},
		{
			name: "other error",
			err:  ErrStoreUnavailable,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotFound(tt.err)
			if got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUnavailable(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("list orders: %w: %w", ErrStoreUnavailable, transport)

	if !IsUnavailable(wrapped) {
		t.Fatal("expected wrapped error to be classified as unavailable")
	}
	if !errors.Is(wrapped, transport) {
		t.Fatal("expected transport cause to stay in the chain")
	}
	if IsUnavailable(ErrOrderNotFound) {
		t.Fatal("not found must not be classified as unavailable")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(errors.Join(ErrOrderIDRequired, ErrItemQtyInvalid)) {
		t.Fatal("expected joined invariant errors to be validation errors")
	}
	if IsValidation(ErrStoreUnavailable) {
		t.Fatal("store errors are not validation errors")
	}
	if IsValidation(nil) {
		t.Fatal("nil is not a validation error")
	}
}
