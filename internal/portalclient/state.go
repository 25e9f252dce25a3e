package portalclient

import (
	"context"
	"errors"
	"sync"

	"planportal/internal/model"
)

// UserSource loads the signed-in user.
type UserSource interface {
	GetUser(ctx context.Context) (*model.User, error)
}

// UserState caches the signed-in user's record. The server copy is
// authoritative; Init and Refresh reload it and Teardown forgets it.
type UserState struct {
	src UserSource

	mu   sync.RWMutex
	user *model.User
}

func NewUserState(src UserSource) *UserState {
	return &UserState{src: src}
}

// Init loads the user after an auth change. A signed-out client leaves the
// state empty without error.
func (s *UserState) Init(ctx context.Context) error {
	u, err := s.src.GetUser(ctx)
	if err != nil {
		s.Teardown()
		if errors.Is(err, ErrSignedOut) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// Refresh reloads the record, keeping the cached copy on failure.
func (s *UserState) Refresh(ctx context.Context) error {
	u, err := s.src.GetUser(ctx)
	if err != nil {
		if errors.Is(err, ErrSignedOut) {
			s.Teardown()
		}
		return err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// Teardown forgets the cached user, typically on sign-out.
func (s *UserState) Teardown() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns a copy of the cached user, or nil.
func (s *UserState) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Metadata returns the cached metadata and whether a user is loaded.
func (s *UserState) Metadata() (model.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.Metadata{}, false
	}
	return s.user.Metadata, true
}
