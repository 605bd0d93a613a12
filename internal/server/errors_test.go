package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yatharthk2/EmailDemo-sub001/internal/capability"
	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "statement parse error",
			err:  &statement.ParseError{Message: "failed to open workbook"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "capability error",
			err:  &capability.CapabilityError{Op: "classify", Message: "model call failed"},
			want: http.StatusBadGateway,
		},
		{
			name: "persistence error",
			err:  &db.PersistenceError{Op: "save_receipt", Message: "connection refused"},
			want: http.StatusInternalServerError,
		},
		{
			name: "unknown error",
			err:  errors.New("something else"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
