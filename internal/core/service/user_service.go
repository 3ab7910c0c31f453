package service

import (
	"context"
	"errors"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserService implements record-level CRUD and the admin user list.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial update. An email change re-checks uniqueness
// against non-deleted records.
func (s *UserService) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Role != nil && *upd.Role != domain.RoleUser && *upd.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, *upd.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, upd)
}

// Delete soft-deletes; the record stays in the store but drops out of all
// normal lookups.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *UserService) List(ctx context.Context, page, limit int) (*ports.UserList, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.UserList{Users: users, Total: total, Page: page, Limit: limit}, nil
}
