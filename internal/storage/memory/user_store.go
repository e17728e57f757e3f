package memory

import (
	"context"
	"sync"

	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
)

// UserStore is an in-memory user collection keyed by id with an email index.
type UserStore struct {
	mu      sync.Mutex
	byID    map[string]models.User
	byEmail map[string]string // email -> id
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return models.ErrEmailTaken
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return s.byID[id], nil
}

// Delete removes a user. The core never deletes users itself; this models the
// external administrative action it must tolerate.
func (s *UserStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, user.Email)
		delete(s.byID, id)
	}
}

var _ interfaces.UserStore = (*UserStore)(nil)
