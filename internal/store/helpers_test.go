package store_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/profile-client/internal/api"
	"github.com/hobbyhub/profile-client/internal/apitest"
	"github.com/hobbyhub/profile-client/internal/auth"
)

func newTestClient(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.New(t)
	session, err := auth.NewSession(srv.URL, "", srv.Cookies())
	require.NoError(t, err)
	return srv, api.NewClient(srv.URL, session, 0, zerolog.Nop())
}
