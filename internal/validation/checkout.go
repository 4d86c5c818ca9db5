package validation

import (
	"fmt"
	"strconv"
	"time"

	"donare/internal/models"
)

// Checkout validates a checkout request at the boundary: payment type,
// parallel cart array alignment, per-line values, billing fields, and the
// card fields forwarded to the processor.
func (v *Validator) Checkout(req *models.CheckoutRequest) {
	v.Check(req.PaymentType == models.PaymentTypeCreditCard,
		"payment_type", "only credit_card payments are supported")

	v.cart(req.Cart)
	v.billing(req.Billing)
	v.card(req.Card)
}

func (v *Validator) cart(p models.CartPayload) {
	n := len(p.AppealIDs)
	aligned := len(p.AppealNames) == n && len(p.Amounts) == n &&
		len(p.Quantities) == n && len(p.DonationTypes) == n &&
		len(p.StartDates) == n && len(p.AmountIDs) == n &&
		(len(p.HandlerIDs) == 0 || len(p.HandlerIDs) == n)
	v.Check(aligned, "cart", models.ErrCartShape.Error())
	if !aligned {
		return
	}

	for i := 0; i < n; i++ {
		field := fmt.Sprintf("cart.%d", i)
		v.Range(field+".amount", p.Amounts[i], MinLineAmount, MaxLineAmount)
		v.Check(p.Quantities[i] >= MinLineQuantity && p.Quantities[i] <= MaxLineQuantity,
			field+".quantity", fmt.Sprintf("must be between %d and %d", MinLineQuantity, MaxLineQuantity))
		v.Required(field+".donation_type", p.DonationTypes[i])
		v.Check(dateRegex.MatchString(p.StartDates[i]),
			field+".start_date", "must be a YYYY-MM-DD date")
	}
}

func (v *Validator) billing(b models.BillingInfo) {
	v.Required("billing_name", b.FirstName)
	v.Required("billing_lname", b.LastName)
	v.Required("billing_email", b.Email)
	if b.Email != "" {
		v.Email("billing_email", b.Email)
	}
	if b.Phone != "" {
		v.Phone("billing_phone", b.Phone)
	}
	v.Check(len(b.OrderComments) <= MaxCommentLength,
		"order_comments", fmt.Sprintf("must not be more than %d characters long", MaxCommentLength))
}

func (v *Validator) card(c models.CardInfo) {
	v.Required("cc_number", c.Number)
	v.Required("cc_cvv", c.CVV)
	if c.Number != "" {
		v.Check(luhnValid(c.Number), "cc_number", "invalid card number")
	}

	month, err := strconv.Atoi(c.ExpMonth)
	if err != nil || month < 1 || month > 12 {
		v.AddError("cc_expiration_m", "invalid expiry month")
		return
	}
	year, err := strconv.Atoi(c.ExpYear)
	if err != nil {
		v.AddError("cc_expiration_y", "invalid expiry year")
		return
	}

	now := time.Now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		v.AddError("cc_expiration_y", "card has expired")
	}
}

// luhnValid validates a card number with the Luhn algorithm.
func luhnValid(cardNumber string) bool {
	var sum int
	shouldDouble := false

	for i := len(cardNumber) - 1; i >= 0; i-- {
		if cardNumber[i] < '0' || cardNumber[i] > '9' {
			return false
		}
		digit := int(cardNumber[i] - '0')

		if shouldDouble {
			digit = digit * 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		shouldDouble = !shouldDouble
	}

	return sum%10 == 0
}
