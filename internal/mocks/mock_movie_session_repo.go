package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMovieSessionRepo struct {
	mock.Mock
	domain.MovieSessionRepository
}

func (m *MockMovieSessionRepo) GetAll(ctx context.Context, filters domain.MovieSessionFilters) ([]*domain.MovieSession, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MovieSession), args.Error(1)
}

func (m *MockMovieSessionRepo) GetById(ctx context.Context, id int) (*domain.MovieSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieSession), args.Error(1)
}

func (m *MockMovieSessionRepo) GetTakenPlaces(ctx context.Context, id int) ([]domain.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Place), args.Error(1)
}

func (m *MockMovieSessionRepo) Create(ctx context.Context, session *domain.MovieSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockMovieSessionRepo) Update(ctx context.Context, session *domain.MovieSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockMovieSessionRepo) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
