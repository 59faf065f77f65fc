package app

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/metinatakli/cinema-booking/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MovieSessionsTestSuite struct {
	suite.Suite
	app         *Application
	sessionRepo *mocks.MockMovieSessionRepo
}

func (s *MovieSessionsTestSuite) SetupTest() {
	s.sessionRepo = new(mocks.MockMovieSessionRepo)

	s.app = newTestApplication(func(a *Application) {
		a.movieSessionRepo = s.sessionRepo
	})
}

func TestMovieSessionsSuite(t *testing.T) {
	suite.Run(t, new(MovieSessionsTestSuite))
}

func (s *MovieSessionsTestSuite) TestListMovieSessions() {
	showTime := time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		wantResponse   []api.MovieSessionListItem
	}{
		{
			name: "lists sessions with availability",
			url:  "/movie-sessions",
			setupMocks: func() {
				s.sessionRepo.On("GetAll", mock.Anything, domain.MovieSessionFilters{}).Return([]*domain.MovieSession{
					{
						ID:          4,
						ShowTime:    showTime,
						Movie:       domain.Movie{ID: 1, Title: "Arrival", Image: "uploads/movies/arrival.png"},
						CinemaHall:  domain.CinemaHall{ID: 1, Name: "Red", Rows: 2, SeatsInRow: 5},
						TicketsSold: 3,
					},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantResponse: []api.MovieSessionListItem{
				{
					Id:                 4,
					ShowTime:           showTime,
					MovieTitle:         "Arrival",
					MovieImage:         ptr("/media/uploads/movies/arrival.png"),
					CinemaHallName:     "Red",
					CinemaHallCapacity: 10,
					TicketsAvailable:   7,
				},
			},
		},
		{
			name: "filters by date and movie",
			url:  "/movie-sessions?date=2026-05-02&movie=1",
			setupMocks: func() {
				s.sessionRepo.On("GetAll", mock.Anything, domain.MovieSessionFilters{Date: "2026-05-02", MovieID: 1}).
					Return([]*domain.MovieSession{}, nil)
			},
			wantStatus:   http.StatusOK,
			wantResponse: []api.MovieSessionListItem{},
		},
		{
			name:       "rejects a malformed date",
			url:        "/movie-sessions?date=02.05.2026",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rejects a non numeric movie",
			url:        "/movie-sessions?movie=arrival",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.sessionRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodGet, tt.url, nil)
			serve(s.T(), s.app, w, r, testUser)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				var response []api.MovieSessionListItem
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err, "Failed to decode response")

				diff := cmp.Diff(tt.wantResponse, response)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{tt.wantStatus, tt.wantErrMessage})
		})
	}
}

func (s *MovieSessionsTestSuite) TestGetMovieSession() {
	showTime := time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

	s.sessionRepo.On("GetById", mock.Anything, 4).Return(&domain.MovieSession{
		ID:       4,
		ShowTime: showTime,
		Movie: domain.Movie{
			ID:       1,
			Title:    "Arrival",
			Duration: 116,
			Genres:   []domain.Genre{{ID: 1, Name: "Drama"}},
			Actors:   []domain.Actor{},
		},
		CinemaHall: domain.CinemaHall{ID: 1, Name: "Red", Rows: 2, SeatsInRow: 5},
	}, nil)
	s.sessionRepo.On("GetTakenPlaces", mock.Anything, 4).Return([]domain.Place{{Row: 1, Seat: 2}, {Row: 2, Seat: 5}}, nil)

	w, r := executeRequest(s.T(), http.MethodGet, "/movie-sessions/4", nil)
	serve(s.T(), s.app, w, r, testUser)

	s.Require().Equal(http.StatusOK, w.Code)

	var response api.MovieSessionDetail
	err := json.NewDecoder(w.Body).Decode(&response)
	s.Require().NoError(err)

	want := api.MovieSessionDetail{
		Id:       4,
		ShowTime: showTime,
		Movie: api.MovieListItem{
			Id:       1,
			Title:    "Arrival",
			Duration: 116,
			Genres:   []string{"Drama"},
			Actors:   []string{},
		},
		CinemaHall:  api.CinemaHall{Id: 1, Name: "Red", Rows: 2, SeatsInRow: 5, Capacity: 10},
		TakenPlaces: []api.TakenPlace{{Row: 1, Seat: 2}, {Row: 2, Seat: 5}},
	}

	diff := cmp.Diff(want, response)
	s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
}

func (s *MovieSessionsTestSuite) TestCreateMovieSession() {
	showTime := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       any
		setupMocks func()
		wantStatus int
		wantFields []api.ValidationError
	}{
		{
			name: "creates a session",
			body: api.MovieSessionRequest{ShowTime: showTime, Movie: 1, CinemaHall: 2},
			setupMocks: func() {
				s.sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MovieSession")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*domain.MovieSession).ID = 11
					}).
					Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "unknown cinema hall",
			body: api.MovieSessionRequest{ShowTime: showTime, Movie: 1, CinemaHall: 99},
			setupMocks: func() {
				s.sessionRepo.On("Create", mock.Anything, mock.Anything).
					Return(&domain.ReferenceError{Field: "cinema_hall"})
			},
			wantStatus: http.StatusBadRequest,
			wantFields: []api.ValidationError{{Field: "cinema_hall", Issue: "references a record that does not exist"}},
		},
		{
			name:       "missing show time",
			body:       map[string]any{"movie": 1, "cinema_hall": 2},
			wantStatus: http.StatusBadRequest,
			wantFields: []api.ValidationError{{Field: "show_time", Issue: "is required"}},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.sessionRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/movie-sessions", tt.body)
			serve(s.T(), s.app, w, r, testAdmin)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantFields != nil {
				diff := cmp.Diff(tt.wantFields, decodeValidationErrors(s.T(), w))
				s.Empty(diff, "Validation errors mismatch (-want +got):\n%s", diff)
			}

			if tt.wantStatus == http.StatusCreated {
				var response api.MovieSession
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
				diff := cmp.Diff(api.MovieSession{Id: 11, ShowTime: showTime, Movie: 1, CinemaHall: 2}, response)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func (s *MovieSessionsTestSuite) TestDeleteMovieSessionWithTickets() {
	s.sessionRepo.On("Delete", mock.Anything, 3).Return(domain.ErrRecordInUse)

	w, r := executeRequest(s.T(), http.MethodDelete, "/movie-sessions/3", nil)
	serve(s.T(), s.app, w, r, testAdmin)

	s.Equal(http.StatusConflict, w.Code)
	s.sessionRepo.AssertExpectations(s.T())
}
