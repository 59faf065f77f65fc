package app

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) ListOrders(w http.ResponseWriter, r *http.Request, params api.ListOrdersParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	ownerID := user.ID
	if user.IsStaff {
		ownerID = 0
	}

	orders, metadata, err := app.orderRepo.GetAll(r.Context(), ownerID, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	results := make([]api.Order, len(orders))
	for i, o := range orders {
		results[i] = toApiOrder(o)
	}

	resp := api.OrderListResponse{
		Count:   metadata.TotalRecords,
		Results: results,
	}

	if metadata.HasNext() {
		resp.Next = ptr(pageURL(r.URL, metadata.CurrentPage+1))
	}
	if metadata.HasPrevious() {
		resp.Previous = ptr(pageURL(r.URL, min(metadata.CurrentPage-1, max(metadata.LastPage, 1))))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPagination(params api.ListOrdersParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

// pageURL returns the request URL pointed at another page, keeping every
// other query parameter.
func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))

	next := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return next.String()
}

func (app *Application) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input api.OrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	tickets := make([]domain.Ticket, len(input.Tickets))
	for i, t := range input.Tickets {
		tickets[i] = domain.Ticket{
			MovieSessionID: *t.MovieSession,
			Row:            *t.Row,
			Seat:           *t.Seat,
		}
	}

	user := app.contextGetUser(r)

	order, err := app.booking.PlaceOrder(r.Context(), user.ID, tickets)
	if err != nil {
		var ticketErrs domain.TicketErrors

		switch {
		case errors.As(err, &ticketErrs):
			app.metrics.ticketsRejected(r.Context(), ticketErrs)

			fieldErrs := make([]api.ValidationError, len(ticketErrs))
			for i, e := range ticketErrs {
				fieldErrs[i] = api.ValidationError{Field: e.Path(), Issue: e.Err.Error()}
			}
			app.fieldErrorsResponse(w, r, fieldErrs...)
		case errors.Is(err, domain.ErrEmptyOrder):
			app.fieldErrorsResponse(w, r, api.ValidationError{Field: "tickets", Issue: err.Error()})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.metrics.orderPlaced(r.Context(), order)
	app.contextGetLogger(r).Info("order placed", "order_id", order.ID, "tickets", len(order.Tickets))

	app.sendOrderConfirmation(user, order)

	err = app.writeJSON(w, http.StatusCreated, toApiOrder(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetOrder(w http.ResponseWriter, r *http.Request, id int) {
	order, err := app.orderRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user := app.contextGetUser(r)
	if !user.IsStaff && order.UserID != user.ID {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiOrder(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type confirmationTicket struct {
	Movie    string
	ShowTime string
	Hall     string
	Row      int
	Seat     int
}

func (app *Application) sendOrderConfirmation(user *domain.User, order *domain.Order) {
	tickets := make([]confirmationTicket, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		ct := confirmationTicket{Row: t.Row, Seat: t.Seat}
		if t.MovieSession != nil {
			ct.Movie = t.MovieSession.Movie.Title
			ct.ShowTime = t.MovieSession.ShowTime.Format(time.RFC1123)
			ct.Hall = t.MovieSession.CinemaHall.Name
		}
		tickets = append(tickets, ct)
	}

	data := map[string]any{
		"Name":    displayName(user),
		"OrderID": order.ID,
		"Tickets": tickets,
	}

	app.background(func() {
		err := app.mailer.Send(user.Email, "order_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send order confirmation", "order_id", order.ID, "error", err)
		}
	})
}

func toApiOrder(o *domain.Order) api.Order {
	tickets := make([]api.Ticket, len(o.Tickets))
	for i, t := range o.Tickets {
		ticket := api.Ticket{
			Id:   t.ID,
			Row:  t.Row,
			Seat: t.Seat,
			MovieSession: api.TicketMovieSession{
				Id: t.MovieSessionID,
			},
		}

		if s := t.MovieSession; s != nil {
			ticket.MovieSession.ShowTime = s.ShowTime
			ticket.MovieSession.MovieTitle = s.Movie.Title
			ticket.MovieSession.CinemaHallName = s.CinemaHall.Name
			ticket.MovieSession.CinemaHallCapacity = s.CinemaHall.Capacity()
		}

		tickets[i] = ticket
	}

	return api.Order{
		Id:        o.ID,
		CreatedAt: o.CreatedAt,
		Tickets:   tickets,
	}
}
