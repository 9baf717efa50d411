package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	service seatmap.SeatMapUseCase
}

type seatResponse struct {
	SeatID           string `json:"seat_id"`
	Row              string `json:"row"`
	Position         int    `json:"position"`
	Kind             string `json:"kind"`
	Category         string `json:"category,omitempty"`
	Status           string `json:"status"`
	BookingReference string `json:"booking_reference,omitempty"`
}

type availabilityResponse struct {
	SeatID    string `json:"seat_id"`
	Available bool   `json:"available"`
}

type gridRowResponse struct {
	Row   string   `json:"row"`
	Cells []string `json:"cells"`
}

func NewSeatHandler(service seatmap.SeatMapUseCase) *SeatHandler {
	return &SeatHandler{service: service}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/grid", h.grid)
	router.GET("/:id", h.find)
	router.GET("/:id/availability", h.availability)
}

func (h *SeatHandler) find(c *gin.Context) {
	seat, err := h.service.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSeatResponse(seat))
}

func (h *SeatHandler) availability(c *gin.Context) {
	seatID := c.Param("id")
	available, err := h.service.IsAvailable(c.Request.Context(), seatID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{
		SeatID:    seatmap.NormalizeSeatID(seatID),
		Available: available,
	})
}

func (h *SeatHandler) grid(c *gin.Context) {
	grid, err := h.service.StatusGrid(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rows := make([]gridRowResponse, 0, len(grid))
	for _, row := range grid {
		rows = append(rows, gridRowResponse{Row: row.Row, Cells: row.Cells})
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func toSeatResponse(seat *domain.Seat) seatResponse {
	return seatResponse{
		SeatID:           seat.SeatID,
		Row:              seat.Row,
		Position:         seat.Position,
		Kind:             string(seat.Kind),
		Category:         string(seat.Category),
		Status:           string(seat.Status),
		BookingReference: seat.BookingReference,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSeatNotFound), errors.Is(err, domain.ErrInvalidReference):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotASeat), errors.Is(err, domain.ErrNotBooked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyBooked):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoSeatAvailable):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
