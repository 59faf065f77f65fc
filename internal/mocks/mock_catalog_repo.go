package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking/internal/domain"
)

type MockGenreRepo struct {
	domain.GenreRepository
	GetAllFunc  func(ctx context.Context) ([]domain.Genre, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.Genre, error)
	CreateFunc  func(ctx context.Context, genre *domain.Genre) error
	UpdateFunc  func(ctx context.Context, genre *domain.Genre) error
	DeleteFunc  func(ctx context.Context, id int) error
}

func (m *MockGenreRepo) GetAll(ctx context.Context) ([]domain.Genre, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockGenreRepo) GetById(ctx context.Context, id int) (*domain.Genre, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockGenreRepo) Create(ctx context.Context, genre *domain.Genre) error {
	return m.CreateFunc(ctx, genre)
}

func (m *MockGenreRepo) Update(ctx context.Context, genre *domain.Genre) error {
	return m.UpdateFunc(ctx, genre)
}

func (m *MockGenreRepo) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

type MockActorRepo struct {
	domain.ActorRepository
	GetAllFunc  func(ctx context.Context) ([]domain.Actor, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.Actor, error)
	CreateFunc  func(ctx context.Context, actor *domain.Actor) error
	UpdateFunc  func(ctx context.Context, actor *domain.Actor) error
	DeleteFunc  func(ctx context.Context, id int) error
}

func (m *MockActorRepo) GetAll(ctx context.Context) ([]domain.Actor, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockActorRepo) GetById(ctx context.Context, id int) (*domain.Actor, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockActorRepo) Create(ctx context.Context, actor *domain.Actor) error {
	return m.CreateFunc(ctx, actor)
}

func (m *MockActorRepo) Update(ctx context.Context, actor *domain.Actor) error {
	return m.UpdateFunc(ctx, actor)
}

func (m *MockActorRepo) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}

type MockCinemaHallRepo struct {
	domain.CinemaHallRepository
	GetAllFunc  func(ctx context.Context) ([]domain.CinemaHall, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.CinemaHall, error)
	CreateFunc  func(ctx context.Context, hall *domain.CinemaHall) error
	UpdateFunc  func(ctx context.Context, hall *domain.CinemaHall) error
	DeleteFunc  func(ctx context.Context, id int) error
}

func (m *MockCinemaHallRepo) GetAll(ctx context.Context) ([]domain.CinemaHall, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockCinemaHallRepo) GetById(ctx context.Context, id int) (*domain.CinemaHall, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockCinemaHallRepo) Create(ctx context.Context, hall *domain.CinemaHall) error {
	return m.CreateFunc(ctx, hall)
}

func (m *MockCinemaHallRepo) Update(ctx context.Context, hall *domain.CinemaHall) error {
	return m.UpdateFunc(ctx, hall)
}

func (m *MockCinemaHallRepo) Delete(ctx context.Context, id int) error {
	return m.DeleteFunc(ctx, id)
}
