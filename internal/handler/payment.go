package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"payments/internal/domain"
	"payments/internal/money"
	"payments/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
// Amount is kept raw so that both JSON numbers and decimal strings are accepted
// without a float round trip.
type CreatePaymentRequest struct {
	PaymentID string          `json:"payment_id" binding:"required"`
	Amount    json.RawMessage `json:"amount"`
	Currency  string          `json:"currency" binding:"required"`
	Sender    string          `json:"sender" binding:"required,email"`
	Receiver  string          `json:"receiver" binding:"required,email"`
}

// WebhookRequest is the provider's confirmation body.
type WebhookRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	PaymentID string  `json:"payment_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
}

func toPaymentResponse(paymentID string, v *domain.PaymentView) PaymentResponse {
	return PaymentResponse{
		PaymentID: paymentID,
		Status:    string(v.Status),
		Amount:    v.Amount,
		Currency:  v.Currency,
		Sender:    v.Sender,
		Receiver:  v.Receiver,
	}
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	amount, err := money.ParseAmount(string(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), service.CreatePaymentRequest{
		PaymentID: req.PaymentID,
		Amount:    amount,
		Currency:  req.Currency,
		Sender:    req.Sender,
		Receiver:  req.Receiver,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, "payment created", toPaymentResponse(req.PaymentID, payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, "payment retrieved", toPaymentResponse(paymentID, payment))
}

// Webhook handles POST /v1/payments/provider/webhook
//
// The response carries the payment as it was before the update.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.paymentService.ReconcileWebhook(c.Request.Context(), service.WebhookUpdate{
		PaymentID: req.PaymentID,
		Status:    domain.PaymentStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, "webhook processed", toPaymentResponse(req.PaymentID, &result.Previous))
}

// RefreshStatus handles POST /v1/payments/:id/refresh
func (h *PaymentHandler) RefreshStatus(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.paymentService.RefreshStatus(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, "payment status refreshed", toPaymentResponse(paymentID, payment))
}
