package domain

import (
	"context"
	"time"
)

type Place struct {
	Row  int
	Seat int
}

type Ticket struct {
	ID             int
	OrderID        int
	MovieSessionID int
	Row            int
	Seat           int
	MovieSession   *MovieSession
}

func (t Ticket) Place() Place {
	return Place{Row: t.Row, Seat: t.Seat}
}

type Order struct {
	ID        int
	UserID    int
	CreatedAt time.Time
	Tickets   []Ticket
}

type OrderRepository interface {
	// GetAll returns orders newest first. A zero userID lists every order.
	GetAll(ctx context.Context, userID int, pagination Pagination) ([]*Order, *Metadata, error)
	GetById(ctx context.Context, id int) (*Order, error)
	Create(ctx context.Context, order *Order) error
	TicketExists(ctx context.Context, sessionID int, place Place) (bool, error)
}
