package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdt-ict/portal/internal/shared"
)

// Service exposes administrative account operations that have no HTTP route.
type Service struct {
	store Store
}

// NewService builds Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// Rename updates the profile name fields. Empty values leave the field unchanged.
func (s *Service) Rename(ctx context.Context, id, firstName, lastName string) (*User, error) {
	var fields UpdateFields
	if v := strings.TrimSpace(firstName); v != "" {
		fields.FirstName = &v
	}
	if v := strings.TrimSpace(lastName); v != "" {
		fields.LastName = &v
	}
	if fields.FirstName == nil && fields.LastName == nil {
		return nil, fmt.Errorf("users: rename: %w", shared.ErrValidation)
	}
	return s.store.Update(ctx, id, fields)
}

// Delete removes the account permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
