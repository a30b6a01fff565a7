package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/Domenick1991/harborhop/internal/receipt"
	"github.com/Domenick1991/harborhop/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	ID            int64                 `json:"id"`
	Reference     string                `json:"reference"`
	TripType      domain.TripType       `json:"trip_type"`
	Origin        string                `json:"origin"`
	Destination   string                `json:"destination"`
	DepartureDate string                `json:"departure_date"`
	ReturnDate    *string               `json:"return_date,omitempty"`
	ShippingLine  string                `json:"shipping_line"`
	Adults        int                   `json:"adults"`
	Children      int                   `json:"children"`
	TotalPrice    string                `json:"total_price"`
	Status        domain.BookingStatus  `json:"status"`
	ReservedUntil *string               `json:"reserved_until,omitempty"`
	Details       domain.BookingDetails `json:"details"`
	CanReserve    *bool                 `json:"can_reserve,omitempty"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

type draftResponse struct {
	Token string                   `json:"token"`
	Draft *domain.ReservationDraft `json:"draft"`
}

type cancelResponse struct {
	Booking bookingResponse `json:"booking"`
	Message string          `json:"message"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/drafts", h.createDraft)
	router.POST("/bookings", h.create)
	router.GET("/bookings", h.list)
	router.GET("/bookings/history", h.history)
	router.GET("/bookings/:id", h.get)
	router.POST("/bookings/:id/cancel", h.cancel)
	router.GET("/bookings/:id/receipt", h.receipt)
}

func (h *BookingHandler) createDraft(c *gin.Context) {
	var req booking.DraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	draft, err := h.service.CreateDraft(c.Request.Context(), UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse{Token: draft.Token, Draft: draft})
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	reservations, err := h.service.ListReservations(c.Request.Context(), UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unpaid": toBookingResponses(reservations.Unpaid),
		"paid":   toBookingResponses(reservations.Paid),
	})
}

func (h *BookingHandler) history(c *gin.Context) {
	bookings, err := h.service.History(c.Request.Context(), UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(bookings)})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := h.service.GetBooking(c.Request.Context(), UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := toBookingResponse(view.Booking)
	resp.CanReserve = &view.CanReserve
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	result, err := h.service.CancelBooking(c.Request.Context(), UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := fmt.Sprintf("Booking %s has been cancelled.", result.Booking.Reference)
	if result.AlreadyCancelled {
		msg = fmt.Sprintf("Booking %s is already cancelled.", result.Booking.Reference)
	}
	c.JSON(http.StatusOK, cancelResponse{Booking: toBookingResponse(result.Booking), Message: msg})
}

func (h *BookingHandler) receipt(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := h.service.GetBooking(c.Request.Context(), UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	pdf, err := receipt.Render(view.Booking)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, view.Booking.Reference))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		Reference:     b.Reference,
		TripType:      b.TripType,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureDate: b.DepartureDate.Format(time.DateOnly),
		ShippingLine:  b.ShippingLine,
		Adults:        b.Adults,
		Children:      b.Children,
		TotalPrice:    b.TotalPrice.StringFixed(2),
		Status:        b.Status,
		Details:       b.Details,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
	if b.ReturnDate != nil {
		s := b.ReturnDate.Format(time.DateOnly)
		resp.ReturnDate = &s
	}
	if b.ReservedUntil != nil {
		s := b.ReservedUntil.Format(time.RFC3339)
		resp.ReservedUntil = &s
	}
	return resp
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}
