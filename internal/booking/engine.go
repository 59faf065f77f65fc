// Package booking validates ticket requests against the hall layout and
// the tickets already sold, and persists orders.
package booking

import (
	"context"
	"errors"

	"github.com/metinatakli/cinema-booking/internal/domain"
)

type Engine struct {
	sessions domain.MovieSessionRepository
	orders   domain.OrderRepository
}

func NewEngine(sessions domain.MovieSessionRepository, orders domain.OrderRepository) *Engine {
	return &Engine{
		sessions: sessions,
		orders:   orders,
	}
}

// ValidateTicket runs every check a ticket must pass before it can be sold
// and returns the first failure as a *domain.TicketError.
func (e *Engine) ValidateTicket(ctx context.Context, ticket domain.Ticket) error {
	errs, err := e.validate(ctx, []domain.Ticket{ticket})
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}

// PlaceOrder validates all tickets and stores them as one order for the
// user. Either every ticket is sold or none is. Validation failures are
// reported together as domain.TicketErrors.
func (e *Engine) PlaceOrder(ctx context.Context, userID int, tickets []domain.Ticket) (*domain.Order, error) {
	if len(tickets) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	errs, err := e.validate(ctx, tickets)
	if err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		return nil, errs
	}

	order := &domain.Order{
		UserID:  userID,
		Tickets: make([]domain.Ticket, len(tickets)),
	}
	copy(order.Tickets, tickets)

	// The unique constraint on tickets settles races between concurrent
	// orders that both passed validation.
	if err := e.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

type claim struct {
	sessionID int
	place     domain.Place
}

func (e *Engine) validate(ctx context.Context, tickets []domain.Ticket) (domain.TicketErrors, error) {
	var errs domain.TicketErrors

	sessions := make(map[int]*domain.MovieSession)
	claimed := make(map[claim]bool, len(tickets))

	for i, ticket := range tickets {
		session, ok := sessions[ticket.MovieSessionID]
		if !ok {
			var err error

			session, err = e.sessions.GetById(ctx, ticket.MovieSessionID)
			if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
				return nil, err
			}

			sessions[ticket.MovieSessionID] = session
		}

		if session == nil {
			errs = append(errs, &domain.TicketError{Index: i, Field: "movie_session", Err: domain.ErrSessionNotFound})
			continue
		}

		if err := session.CinemaHall.CheckPlace(ticket.Place()); err != nil {
			field := "row"
			if errors.Is(err, domain.ErrSeatOutOfRange) {
				field = "seat"
			}

			errs = append(errs, &domain.TicketError{Index: i, Field: field, Err: err})
			continue
		}

		c := claim{sessionID: ticket.MovieSessionID, place: ticket.Place()}
		if claimed[c] {
			errs = append(errs, &domain.TicketError{Index: i, Err: domain.ErrTicketAlreadyExists})
			continue
		}
		claimed[c] = true

		exists, err := e.orders.TicketExists(ctx, c.sessionID, c.place)
		if err != nil {
			return nil, err
		}

		if exists {
			errs = append(errs, &domain.TicketError{Index: i, Err: domain.ErrTicketAlreadyExists})
		}
	}

	return errs, nil
}
