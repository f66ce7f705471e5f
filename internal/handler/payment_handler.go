package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/auth"
	"bistro/internal/model"
	"bistro/internal/service"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentIntentRequest asks for a card intent of Price major units.
type PaymentIntentRequest struct {
	Price model.Money `json:"price" swaggertype:"number"`
}

// PaymentIntentResponse carries the gateway client secret.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// FinalizePaymentRequest is a completed checkout. Older clients send the
// total as price; amount wins when both are present.
type FinalizePaymentRequest struct {
	Email         string       `json:"email" validate:"required,email"`
	Amount        *model.Money `json:"amount,omitempty" swaggertype:"number"`
	Price         *model.Money `json:"price,omitempty" swaggertype:"number"`
	Currency      string       `json:"currency"`
	TransactionID string       `json:"transactionId"`
	Status        string       `json:"status"`
	CartIDs       []string     `json:"cartIds" validate:"required"`
	MenuItemIDs   []string     `json:"menuItemIds"`
}

// FinalizePaymentResponse reports the recorded payment and the retired cart lines.
type FinalizePaymentResponse struct {
	PaymentResult InsertResult `json:"paymentResult"`
	DeleteResult  DeleteResult `json:"deleteResult"`
	Replayed      bool         `json:"replayed"`
}

// CreatePaymentIntent godoc
// @Summary Create a card payment intent
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentIntentRequest true "Price"
// @Success 200 {object} PaymentIntentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /create_payment_intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	var req PaymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	secret, err := h.paymentService.CreateIntent(c.Request().Context(), req.Price)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, PaymentIntentResponse{ClientSecret: secret})
}

// PaymentHistory godoc
// @Summary List own payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param email path string true "Caller email"
// @Success 200 {array} model.Payment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /payment/{email} [get]
func (h *PaymentHandler) PaymentHistory(c echo.Context) error {
	payments, err := h.paymentService.History(c.Request().Context(), auth.PathParam(c, "email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

// FinalizePayment godoc
// @Summary Record a payment and retire its cart lines
// @Tags payments
// @Accept json
// @Produce json
// @Param request body FinalizePaymentRequest true "Checkout"
// @Success 200 {object} FinalizePaymentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /payment [post]
func (h *PaymentHandler) FinalizePayment(c echo.Context) error {
	var req FinalizePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var amount model.Money
	switch {
	case req.Amount != nil:
		amount = *req.Amount
	case req.Price != nil:
		amount = *req.Price
	}

	res, err := h.paymentService.Finalize(c.Request().Context(), service.FinalizeInput{
		Email:         req.Email,
		Amount:        amount,
		Currency:      req.Currency,
		TransactionID: req.TransactionID,
		Status:        req.Status,
		CartIDs:       req.CartIDs,
		MenuItemIDs:   req.MenuItemIDs,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, FinalizePaymentResponse{
		PaymentResult: InsertResult{Acknowledged: true, InsertedID: res.PaymentID.Hex()},
		DeleteResult:  DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount},
		Replayed:      res.Replayed,
	})
}
