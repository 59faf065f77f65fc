package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type GenreRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

type Genre struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type ActorRequest struct {
	FirstName string `json:"first_name" validate:"required,notblank,max=255"`
	LastName  string `json:"last_name" validate:"required,notblank,max=255"`
}

type Actor struct {
	Id        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type CinemaHallRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=255"`
	Rows       int    `json:"rows" validate:"required,gte=1"`
	SeatsInRow int    `json:"seats_in_row" validate:"required,gte=1"`
}

type CinemaHall struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

type MovieRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"required,gt=0"`
	Genres      []int  `json:"genres" validate:"omitempty,unique,dive,gt=0"`
	Actors      []int  `json:"actors" validate:"omitempty,unique,dive,gt=0"`
}

type MovieListItem struct {
	Id          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
	Image       *string  `json:"image"`
}

type MovieDetail struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Genres      []Genre `json:"genres"`
	Actors      []Actor `json:"actors"`
	Image       *string `json:"image"`
}

type MovieImageResponse struct {
	Id    int    `json:"id"`
	Image string `json:"image"`
}

type ListMoviesParams struct {
	Title  *string `form:"title,omitempty" json:"title,omitempty"`
	Genres *[]int  `form:"genres,omitempty" json:"genres,omitempty" validate:"omitnil,dive,gt=0"`
	Actors *[]int  `form:"actors,omitempty" json:"actors,omitempty" validate:"omitnil,dive,gt=0"`
}

type MovieSessionRequest struct {
	ShowTime   time.Time `json:"show_time" validate:"required"`
	Movie      int       `json:"movie" validate:"required,gt=0"`
	CinemaHall int       `json:"cinema_hall" validate:"required,gt=0"`
}

type MovieSession struct {
	Id         int       `json:"id"`
	ShowTime   time.Time `json:"show_time"`
	Movie      int       `json:"movie"`
	CinemaHall int       `json:"cinema_hall"`
}

type MovieSessionListItem struct {
	Id                 int       `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	MovieImage         *string   `json:"movie_image"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
	TicketsAvailable   int       `json:"tickets_available"`
}

type TakenPlace struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type MovieSessionDetail struct {
	Id          int           `json:"id"`
	ShowTime    time.Time     `json:"show_time"`
	Movie       MovieListItem `json:"movie"`
	CinemaHall  CinemaHall    `json:"cinema_hall"`
	TakenPlaces []TakenPlace  `json:"taken_places"`
}

type ListMovieSessionsParams struct {
	Date  *string `form:"date,omitempty" json:"date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Movie *int    `form:"movie,omitempty" json:"movie,omitempty" validate:"omitnil,gt=0"`
}

type TicketRequest struct {
	Row          *int `json:"row" validate:"required"`
	Seat         *int `json:"seat" validate:"required"`
	MovieSession *int `json:"movie_session" validate:"required"`
}

type OrderRequest struct {
	Tickets []TicketRequest `json:"tickets" validate:"required,min=1,dive"`
}

type TicketMovieSession struct {
	Id                 int       `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
}

type Ticket struct {
	Id           int                `json:"id"`
	Row          int                `json:"row"`
	Seat         int                `json:"seat"`
	MovieSession TicketMovieSession `json:"movie_session"`
}

type Order struct {
	Id        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Tickets   []Ticket  `json:"tickets"`
}

type OrderListResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Order `json:"results"`
}

type ListOrdersParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty" validate:"omitnil,gte=1,lte=10000000"`
	PageSize *int `form:"page_size,omitempty" json:"page_size,omitempty" validate:"omitnil,gte=1,lte=100"`
}
