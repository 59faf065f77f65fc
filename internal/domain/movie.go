package domain

import (
	"context"
	"io"
)

type Movie struct {
	ID          int
	Title       string
	Description string
	Duration    int
	Genres      []Genre
	Actors      []Actor
	// Image is the storage path of the poster, empty when none was uploaded.
	Image string
}

func (m *Movie) GenreIDs() []int {
	ids := make([]int, len(m.Genres))
	for i, g := range m.Genres {
		ids[i] = g.ID
	}

	return ids
}

func (m *Movie) ActorIDs() []int {
	ids := make([]int, len(m.Actors))
	for i, a := range m.Actors {
		ids[i] = a.ID
	}

	return ids
}

// MovieFilters narrows a movie listing. Empty fields do not filter. Ids
// within one field are alternatives, different fields must all match.
type MovieFilters struct {
	Title    string
	GenreIDs []int
	ActorIDs []int
}

type MovieRepository interface {
	GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, error)
	GetById(ctx context.Context, id int) (*Movie, error)
	Create(ctx context.Context, movie *Movie) error
	Update(ctx context.Context, movie *Movie) error
	UpdateImage(ctx context.Context, id int, image string) error
	Delete(ctx context.Context, id int) error
}

// ImageStore persists uploaded movie posters.
type ImageStore interface {
	Save(name string, data io.Reader) (string, error)
	Delete(path string) error
	URL(path string) string
}
