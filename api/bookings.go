package api

import (
	"net/http"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/service/registry"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service registry.BookingUseCase
}

type createBookingRequest struct {
	SeatID         string `json:"seat_id"`
	Category       string `json:"category"`
	PassportNumber string `json:"passport_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
}

type bookingResponse struct {
	Reference      string `json:"reference"`
	SeatID         string `json:"seat_id"`
	Row            string `json:"row"`
	Position       int    `json:"position"`
	Category       string `json:"category"`
	PassportNumber string `json:"passport_number,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
}

func NewBookingHandler(service registry.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:reference", h.get)
	router.DELETE("/:reference", h.free)
}

// RegisterSeatRoutes adds the seat-side release route, freeing by seat
// id instead of reference.
func (h *BookingHandler) RegisterSeatRoutes(router *gin.RouterGroup) {
	router.DELETE("/:id/booking", h.freeBySeat)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Book(c.Request.Context(), registry.BookingInput{
		SeatID:   req.SeatID,
		Category: domain.SeatCategory(req.Category),
		TravelerFields: registry.TravelerFields{
			PassportNumber: req.PassportNumber,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
		},
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		Reference:      result.Traveler.BookingReference,
		SeatID:         result.Seat.SeatID,
		Row:            result.Seat.Row,
		Position:       result.Seat.Position,
		Category:       string(result.Seat.Category),
		PassportNumber: result.Traveler.PassportNumber,
		FirstName:      result.Traveler.FirstName,
		LastName:       result.Traveler.LastName,
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	reference := c.Param("reference")
	traveler, err := h.service.TravelerByReference(c.Request.Context(), reference)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookingResponse{
		Reference:      traveler.BookingReference,
		Row:            traveler.SeatRow,
		Position:       traveler.SeatPosition,
		PassportNumber: traveler.PassportNumber,
		FirstName:      traveler.FirstName,
		LastName:       traveler.LastName,
	})
}

func (h *BookingHandler) free(c *gin.Context) {
	h.release(c, c.Param("reference"))
}

func (h *BookingHandler) freeBySeat(c *gin.Context) {
	h.release(c, c.Param("id"))
}

func (h *BookingHandler) release(c *gin.Context, idOrReference string) {
	seat, err := h.service.Free(c.Request.Context(), idOrReference)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seat_id": seat.SeatID,
		"status":  string(seat.Status),
	})
}
