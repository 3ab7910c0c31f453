package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

func seedUser(t *testing.T, repo *stubUserRepo, name, email string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	created, err := repo.Create(context.Background(), &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

func TestUserService_Get(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	alice := seedUser(t, repo, "Alice", "alice@example.com")

	got, err := svc.Get(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.Get(context.Background(), "user_999"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	alice := seedUser(t, repo, "Alice", "alice@example.com")

	name := "Alice B"
	role := domain.RoleAdmin
	updated, err := svc.Update(context.Background(), alice.ID, ports.UserUpdate{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Alice B" || updated.Role != domain.RoleAdmin {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestUserService_Update_InvalidRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	alice := seedUser(t, repo, "Alice", "alice@example.com")

	role := "superuser"
	if _, err := svc.Update(context.Background(), alice.ID, ports.UserUpdate{Role: &role}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Update_EmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	seedUser(t, repo, "Alice", "alice@example.com")
	bob := seedUser(t, repo, "Bob", "bob@example.com")

	email := "alice@example.com"
	if _, err := svc.Update(context.Background(), bob.ID, ports.UserUpdate{Email: &email}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Re-submitting the current email is not a conflict.
	own := "bob@example.com"
	if _, err := svc.Update(context.Background(), bob.ID, ports.UserUpdate{Email: &own}); err != nil {
		t.Fatalf("same-email update failed: %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	alice := seedUser(t, repo, "Alice", "alice@example.com")

	if err := svc.Delete(context.Background(), alice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("deleted user still visible: %v", err)
	}
	if err := svc.Delete(context.Background(), alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	for i := 0; i < 5; i++ {
		seedUser(t, repo, "User", "user"+string(rune('a'+i))+"@example.com")
	}

	list, err := svc.List(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 5 || len(list.Users) != 3 || list.Page != 1 || list.Limit != 3 {
		t.Fatalf("unexpected page: total=%d users=%d page=%d limit=%d",
			list.Total, len(list.Users), list.Page, list.Limit)
	}

	list, err = svc.List(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if len(list.Users) != 2 {
		t.Fatalf("expected 2 users on page 2, got %d", len(list.Users))
	}
}

func TestUserService_List_ClampsArguments(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	seedUser(t, repo, "Alice", "alice@example.com")

	list, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Page != 1 || list.Limit != defaultPageLimit {
		t.Fatalf("defaults not applied: page=%d limit=%d", list.Page, list.Limit)
	}

	list, err = svc.List(context.Background(), 1, 10000)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Limit != maxPageLimit {
		t.Fatalf("limit not clamped: %d", list.Limit)
	}
}
