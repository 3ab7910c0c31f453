package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

type stubUserService struct {
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, page, limit int) (*ports.UserList, error)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, id, upd)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context, page, limit int) (*ports.UserList, error) {
	return s.listFn(ctx, page, limit)
}

func TestUserHandler_Get(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id != "user_1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return &domain.User{ID: id, Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/users/user_1", "")
	c.SetParamNames("id")
	c.SetParamValues("user_1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "user_1" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewUserHandler(stub)

	c, _ := newTestContext(http.MethodGet, "/users/user_999", "")
	c.SetParamNames("id")
	c.SetParamValues("user_999")

	if err := handler.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
			if id != "user_1" || upd.Name == nil || *upd.Name != "Alice B" || upd.Email != nil {
				t.Fatalf("unexpected args: %s %+v", id, upd)
			}
			return &domain.User{ID: id, Name: *upd.Name, Email: "alice@example.com", Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodPut, "/users/user_1", `{"name":"Alice B"}`)
	c.SetParamNames("id")
	c.SetParamValues("user_1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_InvalidRole(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	c, _ := newTestContext(http.MethodPut, "/users/user_1", `{"role":"superuser"}`)
	c.SetParamNames("id")
	c.SetParamValues("user_1")

	err := handler.Update(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id string) error {
			if id != "user_1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodDelete, "/users/user_1", "")
	c.SetParamNames("id")
	c.SetParamValues("user_1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserHandler_List(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, page, limit int) (*ports.UserList, error) {
			if page != 2 || limit != 10 {
				t.Fatalf("unexpected args: page=%d limit=%d", page, limit)
			}
			return &ports.UserList{
				Users: []*domain.User{
					{ID: "user_11", Name: "K", Email: "k@example.com", Role: domain.RoleUser},
				},
				Total: 25,
				Page:  2,
				Limit: 10,
			}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/users?page=2&limit=10", "")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "user_11" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if resp.Pagination.Total != 25 || resp.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}
