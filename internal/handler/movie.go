package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/its-ok-zid/movie-booking/internal/service"
)

// MovieHandler bundles dependencies for the showing and booking
// endpoints.
type MovieHandler struct {
	Inventory *service.InventoryService
}

func NewMovieHandler(inv *service.InventoryService) *MovieHandler {
	if inv == nil {
		panic("nil service passed to NewMovieHandler")
	}
	return &MovieHandler{Inventory: inv}
}

// ----- DTOs -----

type bookTicketsReq struct {
	MovieName       string `json:"movie_name"`
	TheatreName     string `json:"theatre_name"`
	NumberOfTickets int    `json:"number_of_tickets"`
	SeatNumbers     string `json:"seat_numbers"`
}

type updateAvailabilityReq struct {
	TheatreName  string `json:"theatre_name"`
	TotalTickets int    `json:"total_tickets"`
}

type addMovieReq struct {
	MovieName    string `json:"movie_name"`
	TheatreName  string `json:"theatre_name"`
	TotalTickets int    `json:"total_tickets"`
}

// Add registers a new showing for sale.
func (h *MovieHandler) Add(c echo.Context) error {
	var req addMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	showing, err := h.Inventory.CreateShowing(ctx, req.MovieName, req.TheatreName, req.TotalTickets)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, showing)
}

// List returns every showing, sold-out ones included.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	showings, err := h.Inventory.ListShowings(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, showings)
}

// Search returns the first showing whose movie name matches the `name`
// query parameter case-insensitively.
func (h *MovieHandler) Search(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name query parameter required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	showing, err := h.Inventory.FindShowingByName(ctx, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, showing)
}

// Book admits a booking against a showing's remaining capacity.
func (h *MovieHandler) Book(c echo.Context) error {
	var req bookTicketsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieName == "" || req.TheatreName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_name/theatre_name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	booking, err := h.Inventory.BookTickets(ctx, req.MovieName, req.TheatreName, req.NumberOfTickets, req.SeatNumbers)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// UpdateAvailability is the administrative capacity override. The
// response includes the booked-ticket sum so the operator can judge
// whether the new total makes sense; the engine itself never blocks on
// it.
func (h *MovieHandler) UpdateAvailability(c echo.Context) error {
	movieName := c.Param("movieName")
	ticketID := c.Param("ticketId")

	var req updateAvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TheatreName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theatre_name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	update, err := h.Inventory.UpdateAvailability(ctx, movieName, req.TheatreName, ticketID, req.TotalTickets)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, update)
}

// Delete removes a showing that has no bookings.
func (h *MovieHandler) Delete(c echo.Context) error {
	movieName := c.Param("movieName")
	theatreName := c.Param("theatreName")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Inventory.DeleteShowing(ctx, movieName, theatreName); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Movie deleted successfully"})
}
