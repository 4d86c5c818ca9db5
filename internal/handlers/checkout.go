package handlers

import (
	"context"
	"errors"
	"log"

	errs "donare/internal/errors"
	"donare/internal/models"
	"donare/internal/services/checkout"
	"donare/internal/utils/response"
	"donare/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CheckoutService is the service surface the handler needs.
type CheckoutService interface {
	Process(ctx context.Context, req *models.CheckoutRequest) (*checkout.Result, error)
}

type CheckoutHandler struct {
	service CheckoutService
}

func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// ProcessPayment handles POST /checkout/process-payment.
func (h *CheckoutHandler) ProcessPayment(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request format")
	}

	v := validation.New()
	v.Checkout(&req)
	if !v.Valid() {
		return response.ValidationError(c, v.Message())
	}

	result, err := h.service.Process(c.Context(), &req)
	if err != nil {
		if isClientError(err) {
			return response.BadRequest(c, err.Error())
		}
		log.Printf("checkout failed: %v", err)
		return response.ServerError(c, "Exception: unable to process your donation")
	}

	if result.RedirectURL != "" {
		return response.Redirect(c, result.RedirectURL)
	}

	return response.Success(c, "Payment processed successfully", fiber.Map{
		"chargeId":  result.ChargeID,
		"orderNo":   result.OrderNo,
		"invoiceId": result.InvoiceID,
	})
}

// isClientError reports whether the failure is the caller's to fix:
// validation-shaped problems and card declines. Everything after a
// captured charge is internal and surfaces as a 500 with the detail only
// logged.
func isClientError(err error) bool {
	return errors.Is(err, errs.ErrEmptyCart) ||
		errors.Is(err, errs.ErrUnsupportedFrequency) ||
		errors.Is(err, errs.ErrPaymentMethodRejected) ||
		errors.Is(err, errs.ErrChargeDeclined) ||
		errors.Is(err, models.ErrCartShape)
}
