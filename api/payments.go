package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/harborhop/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

type payRequest struct {
	Method string `json:"method"`
}

type paymentResponse struct {
	Booking          bookingResponse `json:"booking"`
	AlreadyCompleted bool            `json:"already_completed"`
	Message          string          `json:"message"`
}

type checkoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings/:id/payment", h.pay)
	router.POST("/bookings/:id/checkout", h.checkout)
	router.GET("/bookings/:id/checkout/success", h.checkoutSuccess)
}

func (h *PaymentHandler) pay(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req payRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.Pay(c.Request.Context(), UserID(c), id, req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(result))
}

func (h *PaymentHandler) checkout(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	base := fmt.Sprintf("%s/api/v1/bookings/%d", baseURL(c), id)

	checkout, err := h.service.StartCheckout(c.Request.Context(), UserID(c), id, payment.CheckoutURLs{
		Success: base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		Cancel:  base,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{SessionID: checkout.SessionID, CheckoutURL: checkout.URL})
}

func (h *PaymentHandler) checkoutSuccess(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	result, err := h.service.ConfirmCheckout(c.Request.Context(), UserID(c), id, c.Query("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(result))
}

func toPaymentResponse(result *payment.Result) paymentResponse {
	msg := fmt.Sprintf("Payment successful. Booking %s is now completed.", result.Booking.Reference)
	if result.AlreadyCompleted {
		msg = fmt.Sprintf("Booking %s is already paid.", result.Booking.Reference)
	}
	return paymentResponse{
		Booking:          toBookingResponse(result.Booking),
		AlreadyCompleted: result.AlreadyCompleted,
		Message:          msg,
	}
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
