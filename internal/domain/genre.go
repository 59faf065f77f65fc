package domain

import "context"

type Genre struct {
	ID   int
	Name string
}

type GenreRepository interface {
	GetAll(ctx context.Context) ([]Genre, error)
	GetById(ctx context.Context, id int) (*Genre, error)
	Create(ctx context.Context, genre *Genre) error
	Update(ctx context.Context, genre *Genre) error
	Delete(ctx context.Context, id int) error
}
