package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var keysToIgnore = map[string]struct{}{
	"timestamp":  {},
	"requestId":  {},
	"created_at": {},
}

func prepareRequest(method, path string, body io.Reader, contentType string, headers map[string]string, cookies []http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	switch {
	case contentType != "":
		req.Header.Set("Content-Type", contentType)
	case body != nil:
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(&c)
	}

	return req
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	t.Helper()

	var actual any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))
	actual = clean(actual)

	var expected any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// clean drops fields whose values change between runs.
func clean(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k := range v {
			if _, ok := keysToIgnore[k]; ok {
				delete(v, k)
				continue
			}
			v[k] = clean(v[k])
		}
	case []any:
		for i := range v {
			v[i] = clean(v[i])
		}
	}

	return v
}

func decode[T any](t testing.TB, res *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		TRUNCATE tickets, orders, movie_sessions, movie_genres, movie_actors,
			movies, genres, actors, cinema_halls, users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
}

func insertUser(t testing.TB, db *pgxpool.Pool, email, password string, staff bool) int {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	var id int
	err = db.QueryRow(context.Background(), `
		INSERT INTO users (email, password_hash, first_name, last_name, is_staff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, email, hash, TestUserFirstName, TestUserLastName, staff).Scan(&id)
	require.NoError(t, err)

	return id
}

func bearer(t testing.TB, app *TestApp, userId int) map[string]string {
	t.Helper()

	token, err := app.Tokens.Issue(userId)
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token.Token}
}

func insertGenre(t testing.TB, db *pgxpool.Pool, name string) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(), `INSERT INTO genres (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)

	return id
}

func insertActor(t testing.TB, db *pgxpool.Pool, firstName, lastName string) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO actors (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		firstName, lastName).Scan(&id)
	require.NoError(t, err)

	return id
}

func insertHall(t testing.TB, db *pgxpool.Pool, name string, rows, seatsInRow int) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO cinema_halls (name, "rows", seats_in_row) VALUES ($1, $2, $3) RETURNING id`,
		name, rows, seatsInRow).Scan(&id)
	require.NoError(t, err)

	return id
}

func insertMovie(t testing.TB, db *pgxpool.Pool, title string, genreIds, actorIds []int) int {
	t.Helper()

	ctx := context.Background()

	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO movies (title, description, duration) VALUES ($1, $2, $3) RETURNING id`,
		title, TestMovieDescription, TestMovieDuration).Scan(&id)
	require.NoError(t, err)

	for _, g := range genreIds {
		_, err = db.Exec(ctx, `INSERT INTO movie_genres (movie_id, genre_id) VALUES ($1, $2)`, id, g)
		require.NoError(t, err)
	}

	for _, a := range actorIds {
		_, err = db.Exec(ctx, `INSERT INTO movie_actors (movie_id, actor_id) VALUES ($1, $2)`, id, a)
		require.NoError(t, err)
	}

	return id
}

func insertSession(t testing.TB, db *pgxpool.Pool, movieId, hallId int, showTime time.Time) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO movie_sessions (show_time, movie_id, cinema_hall_id) VALUES ($1, $2, $3) RETURNING id`,
		showTime, movieId, hallId).Scan(&id)
	require.NoError(t, err)

	return id
}

type seat struct {
	row, seat int
}

func insertOrder(t testing.TB, db *pgxpool.Pool, userId, sessionId int, seats ...seat) int {
	t.Helper()

	ctx := context.Background()

	var id int
	err := db.QueryRow(ctx, `INSERT INTO orders (user_id) VALUES ($1) RETURNING id`, userId).Scan(&id)
	require.NoError(t, err)

	for _, s := range seats {
		_, err = db.Exec(ctx,
			`INSERT INTO tickets (order_id, movie_session_id, "row", seat) VALUES ($1, $2, $3, $4)`,
			id, sessionId, s.row, s.seat)
		require.NoError(t, err)
	}

	return id
}

func countRows(t testing.TB, db *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	require.NoError(t, err)

	return n
}
