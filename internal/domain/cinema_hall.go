package domain

import "context"

type CinemaHall struct {
	ID         int
	Name       string
	Rows       int
	SeatsInRow int
}

func (h CinemaHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// CheckPlace reports whether the place exists in the hall. Rows are checked
// before seats, so a place outside both ranges yields ErrRowOutOfRange.
func (h CinemaHall) CheckPlace(p Place) error {
	if p.Row < 1 || p.Row > h.Rows {
		return ErrRowOutOfRange
	}

	if p.Seat < 1 || p.Seat > h.SeatsInRow {
		return ErrSeatOutOfRange
	}

	return nil
}

type CinemaHallRepository interface {
	GetAll(ctx context.Context) ([]CinemaHall, error)
	GetById(ctx context.Context, id int) (*CinemaHall, error)
	Create(ctx context.Context, hall *CinemaHall) error
	Update(ctx context.Context, hall *CinemaHall) error
	Delete(ctx context.Context, id int) error
}
