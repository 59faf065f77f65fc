package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/metinatakli/cinema-booking/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSession(id, rows, seatsInRow int) *domain.MovieSession {
	return &domain.MovieSession{
		ID:         id,
		Movie:      domain.Movie{ID: 1, Title: "Inception"},
		CinemaHall: domain.CinemaHall{ID: 1, Name: "Blue", Rows: rows, SeatsInRow: seatsInRow},
	}
}

func TestValidateTicket(t *testing.T) {
	tests := []struct {
		name      string
		ticket    domain.Ticket
		setup     func(*mocks.MockMovieSessionRepo, *mocks.MockOrderRepo)
		wantErr   error
		wantField string
	}{
		{
			name:   "valid ticket",
			ticket: domain.Ticket{MovieSessionID: 1, Row: 5, Seat: 7},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil)
				o.On("TicketExists", mock.Anything, 1, domain.Place{Row: 5, Seat: 7}).Return(false, nil)
			},
		},
		{
			name:   "missing session",
			ticket: domain.Ticket{MovieSessionID: 9, Row: 1, Seat: 1},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 9).Return(nil, domain.ErrRecordNotFound)
			},
			wantErr:   domain.ErrSessionNotFound,
			wantField: "tickets[0].movie_session",
		},
		{
			name:   "row above range",
			ticket: domain.Ticket{MovieSessionID: 1, Row: 11, Seat: 1},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil)
			},
			wantErr:   domain.ErrRowOutOfRange,
			wantField: "tickets[0].row",
		},
		{
			name:   "row checked before seat",
			ticket: domain.Ticket{MovieSessionID: 1, Row: 0, Seat: 99},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil)
			},
			wantErr:   domain.ErrRowOutOfRange,
			wantField: "tickets[0].row",
		},
		{
			name:   "seat above range",
			ticket: domain.Ticket{MovieSessionID: 1, Row: 10, Seat: 13},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil)
			},
			wantErr:   domain.ErrSeatOutOfRange,
			wantField: "tickets[0].seat",
		},
		{
			name:   "seat already sold",
			ticket: domain.Ticket{MovieSessionID: 1, Row: 2, Seat: 2},
			setup: func(s *mocks.MockMovieSessionRepo, o *mocks.MockOrderRepo) {
				s.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil)
				o.On("TicketExists", mock.Anything, 1, domain.Place{Row: 2, Seat: 2}).Return(true, nil)
			},
			wantErr:   domain.ErrTicketAlreadyExists,
			wantField: "tickets[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(mocks.MockMovieSessionRepo)
			orders := new(mocks.MockOrderRepo)
			tt.setup(sessions, orders)

			engine := NewEngine(sessions, orders)
			err := engine.ValidateTicket(context.Background(), tt.ticket)

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)

				var ticketErr *domain.TicketError
				require.ErrorAs(t, err, &ticketErr)
				assert.Equal(t, tt.wantField, ticketErr.Path())
			}

			sessions.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestValidateTicketRepositoryFailure(t *testing.T) {
	sessions := new(mocks.MockMovieSessionRepo)
	orders := new(mocks.MockOrderRepo)
	dbErr := errors.New("connection reset")

	sessions.On("GetById", mock.Anything, 1).Return(nil, dbErr)

	err := NewEngine(sessions, orders).ValidateTicket(context.Background(), domain.Ticket{MovieSessionID: 1, Row: 1, Seat: 1})

	assert.ErrorIs(t, err, dbErr)

	var ticketErr *domain.TicketError
	assert.False(t, errors.As(err, &ticketErr))
}

func TestPlaceOrder(t *testing.T) {
	t.Run("empty order", func(t *testing.T) {
		engine := NewEngine(new(mocks.MockMovieSessionRepo), new(mocks.MockOrderRepo))

		_, err := engine.PlaceOrder(context.Background(), 1, nil)

		assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	})

	t.Run("stores every ticket in one order", func(t *testing.T) {
		sessions := new(mocks.MockMovieSessionRepo)
		orders := new(mocks.MockOrderRepo)

		sessions.On("GetById", mock.Anything, 1).Return(newSession(1, 10, 12), nil).Once()
		orders.On("TicketExists", mock.Anything, 1, mock.Anything).Return(false, nil).Twice()
		orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.UserID == 42 && len(o.Tickets) == 2
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 7
		}).Return(nil)

		tickets := []domain.Ticket{
			{MovieSessionID: 1, Row: 1, Seat: 1},
			{MovieSessionID: 1, Row: 1, Seat: 2},
		}

		order, err := NewEngine(sessions, orders).PlaceOrder(context.Background(), 42, tickets)

		require.NoError(t, err)
		assert.Equal(t, 7, order.ID)
		assert.Equal(t, 42, order.UserID)
		assert.Len(t, order.Tickets, 2)
		sessions.AssertExpectations(t)
		orders.AssertExpectations(t)
	})

	t.Run("reports every invalid ticket and stores nothing", func(t *testing.T) {
		sessions := new(mocks.MockMovieSessionRepo)
		orders := new(mocks.MockOrderRepo)

		sessions.On("GetById", mock.Anything, 1).Return(newSession(1, 5, 5), nil)
		sessions.On("GetById", mock.Anything, 2).Return(nil, domain.ErrRecordNotFound)
		orders.On("TicketExists", mock.Anything, 1, domain.Place{Row: 1, Seat: 1}).Return(false, nil)

		tickets := []domain.Ticket{
			{MovieSessionID: 1, Row: 1, Seat: 1},
			{MovieSessionID: 1, Row: 6, Seat: 1},
			{MovieSessionID: 1, Row: 1, Seat: 6},
			{MovieSessionID: 2, Row: 1, Seat: 1},
			{MovieSessionID: 1, Row: 1, Seat: 1},
		}

		_, err := NewEngine(sessions, orders).PlaceOrder(context.Background(), 1, tickets)

		var errs domain.TicketErrors
		require.ErrorAs(t, err, &errs)

		paths := make([]string, len(errs))
		for i, e := range errs {
			paths[i] = e.Path()
		}

		assert.Equal(t, []string{"tickets[1].row", "tickets[2].seat", "tickets[3].movie_session", "tickets[4]"}, paths)
		assert.ErrorIs(t, errs[3], domain.ErrTicketAlreadyExists)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage conflict is returned unchanged", func(t *testing.T) {
		sessions := new(mocks.MockMovieSessionRepo)
		orders := new(mocks.MockOrderRepo)
		conflict := domain.TicketErrors{{Index: 0, Err: domain.ErrTicketAlreadyExists}}

		sessions.On("GetById", mock.Anything, 1).Return(newSession(1, 5, 5), nil)
		orders.On("TicketExists", mock.Anything, 1, mock.Anything).Return(false, nil)
		orders.On("Create", mock.Anything, mock.Anything).Return(conflict)

		_, err := NewEngine(sessions, orders).PlaceOrder(
			context.Background(), 1, []domain.Ticket{{MovieSessionID: 1, Row: 3, Seat: 3}})

		assert.ErrorIs(t, err, domain.ErrTicketAlreadyExists)
	})
}

// memoryOrders mimics the unique constraint of the tickets table.
type memoryOrders struct {
	domain.OrderRepository

	mu     sync.Mutex
	nextID int
	taken  map[claim]bool
}

func (m *memoryOrders) TicketExists(_ context.Context, sessionID int, place domain.Place) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.taken[claim{sessionID, place}], nil
}

func (m *memoryOrders) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range order.Tickets {
		if m.taken[claim{t.MovieSessionID, t.Place()}] {
			return domain.TicketErrors{{Index: i, Err: domain.ErrTicketAlreadyExists}}
		}
	}

	for _, t := range order.Tickets {
		m.taken[claim{t.MovieSessionID, t.Place()}] = true
	}

	m.nextID++
	order.ID = m.nextID

	return nil
}

type memorySessions struct {
	domain.MovieSessionRepository
	session *domain.MovieSession
}

func (m *memorySessions) GetById(_ context.Context, id int) (*domain.MovieSession, error) {
	if id != m.session.ID {
		return nil, domain.ErrRecordNotFound
	}

	return m.session, nil
}

func TestPlaceOrderConcurrentSameSeat(t *testing.T) {
	orders := &memoryOrders{taken: make(map[claim]bool)}
	engine := NewEngine(&memorySessions{session: newSession(1, 10, 10)}, orders)

	const buyers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := range buyers {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			_, err := engine.PlaceOrder(context.Background(), userID, []domain.Ticket{{MovieSessionID: 1, Row: 4, Seat: 4}})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrTicketAlreadyExists):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i + 1)
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, rejected)
}
