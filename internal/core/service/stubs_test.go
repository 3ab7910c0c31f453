package service

import (
	"context"
	"fmt"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

// stubUserRepo is an in-memory ports.UserRepository backed by a map
// keyed on user id.
type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ResetPasswordExpires != nil {
		exp := *u.ResetPasswordExpires
		clone.ResetPasswordExpires = &exp
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user_%d", r.nextID)
	r.nextID++
	r.users[created.ID] = cloneUser(created)
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByVerification(_ context.Context, email, token string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.VerificationToken != "" && u.VerificationToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, email, token string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.ResetPasswordToken != "" && u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Verified != nil {
		u.Verified = *upd.Verified
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetVerificationToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.VerificationToken = token
	return nil
}

func (r *stubUserRepo) SetVerified(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	u.VerificationToken = ""
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *stubUserRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (r *stubUserRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	var users []*domain.User
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	total := int64(len(users))
	start := (page - 1) * limit
	if start >= len(users) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], total, nil
}

// stubMailer records outgoing mail and can be told to fail.
type stubMailer struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// stubTemplates echoes the template name plus the data values, enough to
// assert a link made it into the body.
type stubTemplates struct{}

func (stubTemplates) Render(name string, data map[string]string) (string, error) {
	body := name
	for _, v := range data {
		body += " " + v
	}
	return body, nil
}

// stubImageStore records puts and returns a deterministic URL.
type stubImageStore struct {
	keys []string
	data [][]byte
}

func (s *stubImageStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.keys = append(s.keys, key)
	s.data = append(s.data, data)
	return "https://img.example.com/" + key, nil
}

// stubLimiter allows by default and can simulate exhaustion or an outage.
type stubLimiter struct {
	blocked bool
	err     error
}

func (l *stubLimiter) Allow(_ context.Context, _, _ string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.blocked, nil
}
