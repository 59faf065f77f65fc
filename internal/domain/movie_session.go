package domain

import (
	"context"
	"time"
)

type MovieSession struct {
	ID          int
	ShowTime    time.Time
	Movie       Movie
	CinemaHall  CinemaHall
	TicketsSold int
}

func (s *MovieSession) TicketsAvailable() int {
	return s.CinemaHall.Capacity() - s.TicketsSold
}

type MovieSessionFilters struct {
	// Date restricts sessions to a calendar day, formatted as YYYY-MM-DD.
	Date    string
	MovieID int
}

type MovieSessionRepository interface {
	GetAll(ctx context.Context, filters MovieSessionFilters) ([]*MovieSession, error)
	GetById(ctx context.Context, id int) (*MovieSession, error)
	GetTakenPlaces(ctx context.Context, id int) ([]Place, error)
	Create(ctx context.Context, session *MovieSession) error
	Update(ctx context.Context, session *MovieSession) error
	Delete(ctx context.Context, id int) error
}
