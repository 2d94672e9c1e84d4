package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hobbyhub/profile-client/internal/api"
	"github.com/hobbyhub/profile-client/internal/store"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no session", fmt.Errorf("add hobby: %w", store.ErrNoSession), http.StatusUnauthorized},
		{"invalid", &api.Error{Op: "create hobby", Kind: api.KindInvalid}, http.StatusBadRequest},
		{"bad request", &api.Error{Kind: api.KindStatus, Status: http.StatusBadRequest}, http.StatusBadRequest},
		{"forbidden", &api.Error{Kind: api.KindStatus, Status: http.StatusForbidden}, http.StatusForbidden},
		{"server error", &api.Error{Kind: api.KindStatus, Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"transport", &api.Error{Kind: api.KindTransport, Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{"decode", &api.Error{Kind: api.KindDecode}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
