package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: &ErrNotFound{Resource: "cart item", ID: "7"}, want: "cart item not found: 7"},
		{name: "validation", err: &ErrValidation{Message: "postal index must be exactly 6 digits"}, want: "postal index must be exactly 6 digits"},
		{name: "validation without message", err: &ErrValidation{}, want: "validation failed"},
		{name: "transport status", err: &ErrTransport{Op: "GET /api/cart/", StatusCode: 502}, want: "GET /api/cart/: status 502"},
		{name: "transport cause", err: &ErrTransport{Op: "GET /api/cart/", Err: stderrors.New("connection refused")}, want: "GET /api/cart/: connection refused"},
		{name: "parse", err: &ErrParse{Op: "GET /api/cart/", Err: stderrors.New("unexpected EOF")}, want: "GET /api/cart/: malformed response: unexpected EOF"},
		{name: "shortfall", err: &ErrShortfall{Items: []string{"p1", "p2"}}, want: "insufficient stock: p1, p2"},
		{name: "shortfall with message", err: &ErrShortfall{Items: []string{"p1"}, Message: "Недостаточно товара"}, want: "Недостаточно товара: p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := fmt.Errorf("refresh cart: %w", &ErrTransport{Op: "GET /api/cart/", Err: cause})

	assert.True(t, stderrors.Is(wrapped, cause))

	var terr *ErrTransport
	assert.True(t, stderrors.As(wrapped, &terr))
	assert.Equal(t, "GET /api/cart/", terr.Op)

	perr := &ErrParse{Op: "x", Err: cause}
	assert.True(t, stderrors.Is(perr, cause))
}
