package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hobbyhub/profile-client/internal/middleware"
)

type MockSessionLoader struct {
	mock.Mock
}

func (m *MockSessionLoader) HasSession() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSessionLoader) FetchCurrentUser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestGuard_LoadsWhenNoSession(t *testing.T) {
	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(false).Once()
	loader.On("FetchCurrentUser", mock.Anything).Return(nil).Once()

	ok := middleware.NewGuard(loader).BeforeEach(context.Background())

	assert.True(t, ok)
	loader.AssertExpectations(t)
}

func TestGuard_SkipsWhenSessionLoaded(t *testing.T) {
	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(true).Once()

	ok := middleware.NewGuard(loader).BeforeEach(context.Background())

	assert.True(t, ok)
	loader.AssertExpectations(t)
	loader.AssertNotCalled(t, "FetchCurrentUser", mock.Anything)
}

func TestGuard_AllowsNavigationWhenLoadFails(t *testing.T) {
	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(false)
	loader.On("FetchCurrentUser", mock.Anything).Return(errors.New("unauthorized"))

	guard := middleware.NewGuard(loader)

	assert.True(t, guard.BeforeEach(context.Background()))
	assert.True(t, guard.BeforeEach(context.Background()), "each navigation retries")
	loader.AssertNumberOfCalls(t, "FetchCurrentUser", 2)
}

func TestGuard_ConcurrentNavigationsShareOneLoad(t *testing.T) {
	const navigations = 8

	var checked sync.WaitGroup
	checked.Add(navigations)
	release := make(chan struct{})

	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(false).Run(func(mock.Arguments) { checked.Done() })
	loader.On("FetchCurrentUser", mock.Anything).Return(nil).Run(func(mock.Arguments) { <-release })

	guard := middleware.NewGuard(loader)
	var done sync.WaitGroup
	for i := 0; i < navigations; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			assert.True(t, guard.BeforeEach(context.Background()))
		}()
	}

	checked.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	loader.AssertNumberOfCalls(t, "FetchCurrentUser", 1)
}

func TestGuard_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var loadErr error
	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(false).Once()
	loader.On("FetchCurrentUser", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		loadErr = args.Get(0).(context.Context).Err()
	})

	assert.True(t, middleware.NewGuard(loader).BeforeEach(ctx))
	assert.NoError(t, loadErr)
	loader.AssertExpectations(t)
}

func TestRequireSession(t *testing.T) {
	loader := new(MockSessionLoader)
	loader.On("HasSession").Return(false)
	loader.On("FetchCurrentUser", mock.Anything).Return(errors.New("boom"))

	reached := false
	h := middleware.RequireSession(middleware.NewGuard(loader))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	loader.AssertCalled(t, "FetchCurrentUser", mock.Anything)
}
