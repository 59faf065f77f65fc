package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking/internal/domain"
)

// MockUserRepo answers lookups it has no func for with ErrRecordNotFound.
type MockUserRepo struct {
	domain.UserRepository
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	GetByIdFunc    func(ctx context.Context, id int) (*domain.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc == nil {
		return nil, domain.ErrRecordNotFound
	}
	return m.GetByEmailFunc(ctx, email)
}

func (m *MockUserRepo) GetById(ctx context.Context, id int) (*domain.User, error) {
	if m.GetByIdFunc == nil {
		return nil, domain.ErrRecordNotFound
	}
	return m.GetByIdFunc(ctx, id)
}
