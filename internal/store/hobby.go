package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hobbyhub/profile-client/internal/models"
)

// HobbyAPI is the part of the REST client the hobby directory needs.
type HobbyAPI interface {
	ListHobbies(ctx context.Context) ([]models.Hobby, error)
	CreateHobby(ctx context.Context, name string) error
}

// HobbyStore holds the global hobby directory.
type HobbyStore struct {
	*notifier
	api HobbyAPI
	log zerolog.Logger

	mu      sync.RWMutex
	hobbies []models.Hobby
}

func NewHobbyStore(api HobbyAPI, logger zerolog.Logger, opts ...Option) *HobbyStore {
	log := logger.With().Str("component", "hobby_store").Logger()
	return &HobbyStore{
		notifier: newNotifier("hobbies", log, opts),
		api:      api,
		log:      log,
		hobbies:  []models.Hobby{},
	}
}

// Hobbies returns the list from the last successful fetch.
func (s *HobbyStore) Hobbies() []models.Hobby {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Hobby{}, s.hobbies...)
}

// FetchHobbies replaces the directory with the server's list. On failure
// the current list is kept.
func (s *HobbyStore) FetchHobbies(ctx context.Context) error {
	hobbies, err := s.api.ListHobbies(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching hobbies")
		return err
	}

	s.mu.Lock()
	s.hobbies = hobbies
	s.mu.Unlock()

	s.publish(FieldHobbies)
	return nil
}

// AddHobby creates a hobby and then reloads the whole directory.
func (s *HobbyStore) AddHobby(ctx context.Context, name string) error {
	if err := s.api.CreateHobby(ctx, name); err != nil {
		s.log.Error().Err(err).Str("hobby", name).Msg("Error adding a hobby")
		return err
	}
	return s.FetchHobbies(ctx)
}

// Reset empties the directory.
func (s *HobbyStore) Reset() {
	s.mu.Lock()
	s.hobbies = []models.Hobby{}
	s.mu.Unlock()
	s.publish(FieldReset)
}

// Close resets the store and closes every subscription.
func (s *HobbyStore) Close() {
	s.Reset()
	s.notifier.close()
}
