package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepo struct {
	mock.Mock
	domain.OrderRepository
}

func (m *MockOrderRepo) GetAll(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]*domain.Order, *domain.Metadata, error) {

	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Order), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockOrderRepo) GetById(ctx context.Context, id int) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) TicketExists(ctx context.Context, sessionID int, place domain.Place) (bool, error) {
	args := m.Called(ctx, sessionID, place)
	return args.Bool(0), args.Error(1)
}
