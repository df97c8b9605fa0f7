package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: username}
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return 0, nil
	}
	r.users[user.ID] = user
	return 1, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	user, err := svc.Register(ctx, "alice", "s3cret", "admin", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	t.Run("LoginIssuesValidToken", func(t *testing.T) {
		resp, err := svc.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		claims, err := svc.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		other := NewAuthService(repo, "other-secret", time.Hour)
		resp, err := other.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(resp.AccessToken)
		assert.Error(t, err)
	})
}
