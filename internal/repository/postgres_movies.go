package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) GetAll(ctx context.Context, filters domain.MovieFilters) ([]*domain.Movie, error) {
	query := `SELECT m.id, m.title, m.description, m.duration, m.image
		FROM movies m
		WHERE ($1 = '' OR m.title ILIKE '%' || $1 || '%')
			AND (COALESCE(cardinality($2::bigint[]), 0) = 0 OR EXISTS (
				SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND mg.genre_id = ANY($2)))
			AND (COALESCE(cardinality($3::bigint[]), 0) = 0 OR EXISTS (
				SELECT 1 FROM movie_actors ma WHERE ma.movie_id = m.id AND ma.actor_id = ANY($3)))
		ORDER BY m.id`

	rows, err := p.db.Query(ctx, query, escapeLike(filters.Title), filters.GenreIDs, filters.ActorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []*domain.Movie{}

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Duration,
			&movie.Image,
		)

		if err != nil {
			return nil, err
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = loadMovieRelations(ctx, p.db, movies...); err != nil {
		return nil, err
	}

	return movies, nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	var movie domain.Movie

	query := `SELECT id, title, description, duration, image FROM movies WHERE id = $1`

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Duration,
		&movie.Image,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if err = loadMovieRelations(ctx, p.db, &movie); err != nil {
		return nil, err
	}

	return &movie, nil
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `INSERT INTO movies (title, description, duration)
			VALUES ($1, $2, $3)
			RETURNING id, image`

		err := tx.QueryRow(ctx, query, movie.Title, movie.Description, movie.Duration).
			Scan(&movie.ID, &movie.Image)
		if err != nil {
			return err
		}

		return linkMovieRelations(ctx, tx, movie)
	})

	if err != nil {
		return err
	}

	return loadMovieRelations(ctx, p.db, movie)
}

// Update replaces the scalar fields and the genre and actor sets of a movie.
// The image is managed separately through UpdateImage.
func (p *PostgresMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `UPDATE movies
			SET title = $2, description = $3, duration = $4
			WHERE id = $1
			RETURNING image`

		err := tx.QueryRow(ctx, query, movie.ID, movie.Title, movie.Description, movie.Duration).
			Scan(&movie.Image)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if _, err = tx.Exec(ctx, `DELETE FROM movie_genres WHERE movie_id = $1`, movie.ID); err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, `DELETE FROM movie_actors WHERE movie_id = $1`, movie.ID); err != nil {
			return err
		}

		return linkMovieRelations(ctx, tx, movie)
	})

	if err != nil {
		return err
	}

	return loadMovieRelations(ctx, p.db, movie)
}

func (p *PostgresMovieRepository) UpdateImage(ctx context.Context, id int, image string) error {
	tag, err := p.db.Exec(ctx, `UPDATE movies SET image = $2 WHERE id = $1`, id, image)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresMovieRepository) Delete(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
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

func linkMovieRelations(ctx context.Context, tx pgx.Tx, movie *domain.Movie) error {
	query := `INSERT INTO movie_genres (movie_id, genre_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`

	if _, err := tx.Exec(ctx, query, movie.ID, movie.GenreIDs()); err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return &domain.ReferenceError{Field: "genres"}
		}

		return err
	}

	query = `INSERT INTO movie_actors (movie_id, actor_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`

	if _, err := tx.Exec(ctx, query, movie.ID, movie.ActorIDs()); err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return &domain.ReferenceError{Field: "actors"}
		}

		return err
	}

	return nil
}

// loadMovieRelations fills Genres and Actors of the given movies with two
// queries regardless of how many movies are passed.
func loadMovieRelations(ctx context.Context, db querier, movies ...*domain.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	ids := make([]int, len(movies))
	byID := make(map[int]*domain.Movie, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
		m.Genres = []domain.Genre{}
		m.Actors = []domain.Actor{}
		byID[m.ID] = m
	}

	query := `SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg
		JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id = ANY($1)
		ORDER BY g.name`

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return err
	}

	for rows.Next() {
		var movieID int
		var genre domain.Genre

		if err := rows.Scan(&movieID, &genre.ID, &genre.Name); err != nil {
			rows.Close()
			return err
		}

		byID[movieID].Genres = append(byID[movieID].Genres, genre)
	}
	rows.Close()

	if err = rows.Err(); err != nil {
		return err
	}

	query = `SELECT ma.movie_id, a.id, a.first_name, a.last_name
		FROM movie_actors ma
		JOIN actors a ON a.id = ma.actor_id
		WHERE ma.movie_id = ANY($1)
		ORDER BY a.last_name, a.first_name`

	rows, err = db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var movieID int
		var actor domain.Actor

		if err := rows.Scan(&movieID, &actor.ID, &actor.FirstName, &actor.LastName); err != nil {
			return err
		}

		byID[movieID].Actors = append(byID[movieID].Actors, actor)
	}

	return rows.Err()
}
