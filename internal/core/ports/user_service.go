package ports

import (
	"context"

	"github.com/userhub/account-api/internal/core/domain"
)

// UserList is a page of user records plus the total count across pages.
type UserList struct {
	Users []*domain.User
	Total int64
	Page  int
	Limit int
}

// UserService exposes record-level CRUD for authenticated callers and the
// admin user list.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) (*UserList, error)
}
