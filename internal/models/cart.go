package models

import "errors"

// Payment types
const (
	PaymentTypeCreditCard = "credit_card"
)

// ErrCartShape is returned when the parallel cart arrays diverge in length.
var ErrCartShape = errors.New("cart arrays must all have the same length")

// CartLine is one donation line, immutable once submitted.
type CartLine struct {
	AppealID     string
	AppealName   string
	Amount       float64
	Quantity     int
	DonationType string
	StartDate    string // YYYY-MM-DD
	AmountID     string
	HandlerID    string
}

// CartPayload carries the cart as the index-aligned arrays the donation
// widget submits. BindCartLines folds them into ordered CartLine values.
type CartPayload struct {
	AppealIDs     []string  `json:"appeal_ids"`
	AppealNames   []string  `json:"appeal_names"`
	Amounts       []float64 `json:"amounts"`
	Quantities    []int     `json:"quantities"`
	DonationTypes []string  `json:"donation_types"`
	StartDates    []string  `json:"start_dates"`
	AmountIDs     []string  `json:"amount_ids"`
	HandlerIDs    []string  `json:"handler_ids"`
}

// BindCartLines validates that all cart arrays are index-aligned and folds
// them into a single ordered sequence of lines. HandlerIDs may be omitted
// entirely; any other divergence fails with ErrCartShape.
func BindCartLines(p CartPayload) ([]CartLine, error) {
	n := len(p.AppealIDs)
	if len(p.AppealNames) != n || len(p.Amounts) != n || len(p.Quantities) != n ||
		len(p.DonationTypes) != n || len(p.StartDates) != n || len(p.AmountIDs) != n {
		return nil, ErrCartShape
	}
	if len(p.HandlerIDs) != 0 && len(p.HandlerIDs) != n {
		return nil, ErrCartShape
	}

	lines := make([]CartLine, 0, n)
	for i := 0; i < n; i++ {
		line := CartLine{
			AppealID:     p.AppealIDs[i],
			AppealName:   p.AppealNames[i],
			Amount:       p.Amounts[i],
			Quantity:     p.Quantities[i],
			DonationType: p.DonationTypes[i],
			StartDate:    p.StartDates[i],
			AmountID:     p.AmountIDs[i],
		}
		if len(p.HandlerIDs) == n {
			line.HandlerID = p.HandlerIDs[i]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// EffectiveIDs applies the fund-handler precedence rule: a line routed
// through a handler records the handler id and zeroes the amount id.
func (l CartLine) EffectiveIDs() (amountID, handlerID string) {
	handlerID = l.HandlerID
	if handlerID == "" {
		handlerID = "0"
	}
	amountID = l.AmountID
	if handlerID != "0" {
		amountID = "0"
	}
	return amountID, handlerID
}

// BillingInfo carries the donor-entered billing fields.
type BillingInfo struct {
	FirstName     string `json:"billing_name"`
	LastName      string `json:"billing_lname"`
	Organization  string `json:"billing_organization"`
	Street        string `json:"billing_street"`
	City          string `json:"billing_city"`
	State         string `json:"billing_state"`
	Zip           string `json:"billing_zip"`
	Country       string `json:"billing_country"`
	Phone         string `json:"billing_phone"`
	Email         string `json:"billing_email"`
	EmployerName  string `json:"billing_empname"`
	EmployerEmail string `json:"billing_empemail"`
	OrderComments string `json:"order_comments"`
}

// CardInfo carries the raw card fields forwarded to the processor.
type CardInfo struct {
	Number   string `json:"cc_number"`
	ExpMonth string `json:"cc_expiration_m"`
	ExpYear  string `json:"cc_expiration_y"`
	CVV      string `json:"cc_cvv"`
}

// CheckoutRequest is the inbound body of POST /checkout/process-payment.
type CheckoutRequest struct {
	PaymentType  string      `json:"payment_type"`
	Cart         CartPayload `json:"cart"`
	Billing      BillingInfo `json:"billing"`
	Card         CardInfo    `json:"card"`
	Currency     string      `json:"currency"`
	IsRecurring  bool        `json:"isrecurring"`
	ApplyCardFee bool        `json:"apply_card_fee"`
}
