package repository

import (
	"context"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// UserRepository persists application accounts. Plain pass-through CRUD; the
// only invariant (username uniqueness) is enforced by the database.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
