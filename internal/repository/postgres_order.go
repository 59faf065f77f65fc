package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

func (p *PostgresOrderRepository) GetAll(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]*domain.Order, *domain.Metadata, error) {

	query := `
		SELECT count(*) OVER(), id, user_id, created_at
		FROM orders
		WHERE ($1::bigint = 0 OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	orders := []*domain.Order{}

	for rows.Next() {
		var order domain.Order

		err := rows.Scan(&totalRecords, &order.ID, &order.UserID, &order.CreatedAt)
		if err != nil {
			return nil, nil, err
		}

		orders = append(orders, &order)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	// Past the last page the window count is unavailable.
	if len(orders) == 0 && pagination.Offset() > 0 {
		query = `SELECT count(*) FROM orders WHERE ($1::bigint = 0 OR user_id = $1)`

		if err = p.db.QueryRow(ctx, query, userID).Scan(&totalRecords); err != nil {
			return nil, nil, err
		}
	}

	if err = p.loadTickets(ctx, orders...); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return orders, metadata, nil
}

func (p *PostgresOrderRepository) GetById(ctx context.Context, id int) (*domain.Order, error) {
	var order domain.Order

	query := `SELECT id, user_id, created_at FROM orders WHERE id = $1`

	err := p.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.UserID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if err = p.loadTickets(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

// Create inserts the order and all of its tickets in a single transaction.
// A ticket colliding with a committed one fails the whole order with a
// TicketErrors value pointing at the offending ticket.
func (p *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at`

		err := tx.QueryRow(ctx, query, order.UserID).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return err
		}

		query = `INSERT INTO tickets (order_id, movie_session_id, "row", seat)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		for i := range order.Tickets {
			ticket := &order.Tickets[i]
			ticket.OrderID = order.ID

			err = tx.QueryRow(ctx, query, order.ID, ticket.MovieSessionID, ticket.Row, ticket.Seat).Scan(&ticket.ID)
			if err == nil {
				continue
			}

			if isUniqueViolation(err) {
				return domain.TicketErrors{{Index: i, Err: domain.ErrTicketAlreadyExists}}
			}

			if _, ok := foreignKeyViolation(err); ok {
				return domain.TicketErrors{{Index: i, Field: "movie_session", Err: domain.ErrSessionNotFound}}
			}

			return err
		}

		return nil
	})

	if err != nil {
		return err
	}

	return p.loadTickets(ctx, order)
}

func (p *PostgresOrderRepository) TicketExists(ctx context.Context, sessionID int, place domain.Place) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM tickets WHERE movie_session_id = $1 AND "row" = $2 AND seat = $3)`

	var exists bool

	err := p.db.QueryRow(ctx, query, sessionID, place.Row, place.Seat).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresOrderRepository) loadTickets(ctx context.Context, orders ...*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int, len(orders))
	byID := make(map[int]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Tickets = []domain.Ticket{}
		byID[o.ID] = o
	}

	query := `
		SELECT t.id, t.order_id, t.movie_session_id, t."row", t.seat,
			ms.show_time, m.id, m.title, ch.id, ch.name, ch."rows", ch.seats_in_row
		FROM tickets t
		JOIN movie_sessions ms ON ms.id = t.movie_session_id
		JOIN movies m ON m.id = ms.movie_id
		JOIN cinema_halls ch ON ch.id = ms.cinema_hall_id
		WHERE t.order_id = ANY($1)
		ORDER BY t.id
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticket domain.Ticket
		session := &domain.MovieSession{}

		err := rows.Scan(
			&ticket.ID,
			&ticket.OrderID,
			&ticket.MovieSessionID,
			&ticket.Row,
			&ticket.Seat,
			&session.ShowTime,
			&session.Movie.ID,
			&session.Movie.Title,
			&session.CinemaHall.ID,
			&session.CinemaHall.Name,
			&session.CinemaHall.Rows,
			&session.CinemaHall.SeatsInRow,
		)

		if err != nil {
			return err
		}

		session.ID = ticket.MovieSessionID
		ticket.MovieSession = session

		order := byID[ticket.OrderID]
		order.Tickets = append(order.Tickets, ticket)
	}

	return rows.Err()
}
