package middleware

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// SessionLoader is what the guard needs from the user store.
type SessionLoader interface {
	HasSession() bool
	FetchCurrentUser(ctx context.Context) error
}

// Guard makes sure the session user is loaded before a navigation goes on.
// Navigations that arrive while a load is in flight wait for that load
// instead of starting another one.
type Guard struct {
	loader SessionLoader
	group  singleflight.Group
}

func NewGuard(loader SessionLoader) *Guard {
	return &Guard{loader: loader}
}

// BeforeEach loads the session user when none is held. It always allows
// the navigation: a failed load only delays it.
func (g *Guard) BeforeEach(ctx context.Context) bool {
	if g.loader.HasSession() {
		return true
	}
	// Waiters share the load, so it outlives the first caller's context.
	// The store logs load failures itself.
	shared := context.WithoutCancel(ctx)
	_, _, _ = g.group.Do("current_user", func() (interface{}, error) {
		return nil, g.loader.FetchCurrentUser(shared)
	})
	return true
}

// RequireSession runs BeforeEach ahead of every request.
func RequireSession(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.BeforeEach(r.Context())
			next.ServeHTTP(w, r)
		})
	}
}
