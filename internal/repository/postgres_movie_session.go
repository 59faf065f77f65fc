package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

type PostgresMovieSessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieSessionRepository(db *pgxpool.Pool) *PostgresMovieSessionRepository {
	return &PostgresMovieSessionRepository{
		db: db,
	}
}

func (p *PostgresMovieSessionRepository) GetAll(
	ctx context.Context,
	filters domain.MovieSessionFilters) ([]*domain.MovieSession, error) {

	query := `
		SELECT ms.id, ms.show_time,
			m.id, m.title, m.image,
			ch.id, ch.name, ch."rows", ch.seats_in_row,
			(SELECT count(*) FROM tickets t WHERE t.movie_session_id = ms.id)
		FROM movie_sessions ms
		JOIN movies m ON m.id = ms.movie_id
		JOIN cinema_halls ch ON ch.id = ms.cinema_hall_id
		WHERE ($1::text = '' OR ms.show_time::date = NULLIF($1::text, '')::date)
			AND ($2::bigint = 0 OR ms.movie_id = $2)
		ORDER BY ms.show_time, ms.id
	`

	rows, err := p.db.Query(ctx, query, filters.Date, filters.MovieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*domain.MovieSession{}

	for rows.Next() {
		var session domain.MovieSession

		err := rows.Scan(
			&session.ID,
			&session.ShowTime,
			&session.Movie.ID,
			&session.Movie.Title,
			&session.Movie.Image,
			&session.CinemaHall.ID,
			&session.CinemaHall.Name,
			&session.CinemaHall.Rows,
			&session.CinemaHall.SeatsInRow,
			&session.TicketsSold,
		)

		if err != nil {
			return nil, err
		}

		sessions = append(sessions, &session)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (p *PostgresMovieSessionRepository) GetById(ctx context.Context, id int) (*domain.MovieSession, error) {
	query := `
		SELECT ms.id, ms.show_time,
			m.id, m.title, m.description, m.duration, m.image,
			ch.id, ch.name, ch."rows", ch.seats_in_row,
			(SELECT count(*) FROM tickets t WHERE t.movie_session_id = ms.id)
		FROM movie_sessions ms
		JOIN movies m ON m.id = ms.movie_id
		JOIN cinema_halls ch ON ch.id = ms.cinema_hall_id
		WHERE ms.id = $1
	`

	var session domain.MovieSession

	err := p.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.ShowTime,
		&session.Movie.ID,
		&session.Movie.Title,
		&session.Movie.Description,
		&session.Movie.Duration,
		&session.Movie.Image,
		&session.CinemaHall.ID,
		&session.CinemaHall.Name,
		&session.CinemaHall.Rows,
		&session.CinemaHall.SeatsInRow,
		&session.TicketsSold,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if err = loadMovieRelations(ctx, p.db, &session.Movie); err != nil {
		return nil, err
	}

	return &session, nil
}

func (p *PostgresMovieSessionRepository) GetTakenPlaces(ctx context.Context, id int) ([]domain.Place, error) {
	query := `SELECT "row", seat FROM tickets WHERE movie_session_id = $1 ORDER BY "row", seat`

	rows, err := p.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []domain.Place{}

	for rows.Next() {
		var place domain.Place

		if err := rows.Scan(&place.Row, &place.Seat); err != nil {
			return nil, err
		}

		places = append(places, place)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return places, nil
}

func (p *PostgresMovieSessionRepository) Create(ctx context.Context, session *domain.MovieSession) error {
	query := `INSERT INTO movie_sessions (show_time, movie_id, cinema_hall_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := p.db.QueryRow(ctx, query, session.ShowTime, session.Movie.ID, session.CinemaHall.ID).Scan(&session.ID)
	if err != nil {
		return sessionReferenceError(err)
	}

	return nil
}

func (p *PostgresMovieSessionRepository) Update(ctx context.Context, session *domain.MovieSession) error {
	query := `UPDATE movie_sessions
		SET show_time = $2, movie_id = $3, cinema_hall_id = $4
		WHERE id = $1`

	tag, err := p.db.Exec(ctx, query, session.ID, session.ShowTime, session.Movie.ID, session.CinemaHall.ID)
	if err != nil {
		return sessionReferenceError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresMovieSessionRepository) Delete(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM movie_sessions WHERE id = $1`, id)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ErrRecordInUse
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func sessionReferenceError(err error) error {
	constraint, ok := foreignKeyViolation(err)
	if !ok {
		return err
	}

	if constraint == "movie_sessions_movie_id_fkey" {
		return &domain.ReferenceError{Field: "movie"}
	}

	return &domain.ReferenceError{Field: "cinema_hall"}
}
