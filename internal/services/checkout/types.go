package checkout

import (
	"fmt"
	"strconv"

	"donare/internal/models"
	"donare/internal/services/frequency"
)

// Config carries the checkout policy knobs, built from the application
// configuration at startup.
type Config struct {
	CardFeeRate   float64
	ReturnURL     string
	InvoicePrefix string
}

// Result is the success payload of one processed checkout. RedirectURL is
// set only for challenge flows; the charge then finalizes asynchronously
// on the processor side.
type Result struct {
	ChargeID    string
	OrderNo     string
	InvoiceID   string
	RedirectURL string
}

// planRef is one built processor plan awaiting grouping into a schedule.
type planRef struct {
	planID   string
	code     frequency.Code
	quantity int64
}

// cartSummary aggregates the cart for the charge and scheduling steps.
type cartSummary struct {
	total          float64
	recurringTotal float64
	planName       string
	isRecurring    bool
	chargeMeta     map[string]string
	scheduleMeta   map[string]string
}

// summarize flattens the cart into totals, the concatenated plan name, and
// the item metadata maps sent to the processor. Charge metadata covers all
// lines; schedule metadata only the recurring ones.
func summarize(lines []models.CartLine, classes []frequency.Class) cartSummary {
	s := cartSummary{
		chargeMeta:   make(map[string]string),
		scheduleMeta: make(map[string]string),
	}

	planName := ""
	for i, line := range lines {
		key := fmt.Sprintf("item%d", i+1)
		s.chargeMeta[key+"_id"] = line.AppealID
		s.chargeMeta[key+"_name"] = line.AppealName
		s.chargeMeta[key+"_amount"] = strconv.FormatFloat(line.Amount, 'f', -1, 64)
		s.chargeMeta[key+"_quantity"] = strconv.Itoa(line.Quantity)
		s.total += line.Amount * float64(line.Quantity)

		if classes[i].Recurring() {
			s.isRecurring = true
			s.recurringTotal += line.Amount * float64(line.Quantity)
			s.scheduleMeta[key+"_id"] = line.AppealID
			s.scheduleMeta[key+"_name"] = line.AppealName
			s.scheduleMeta[key+"_amount"] = strconv.FormatFloat(line.Amount, 'f', -1, 64)
			s.scheduleMeta[key+"_quantity"] = strconv.Itoa(line.Quantity)
			planName += fmt.Sprintf("%s %s, ", line.AppealName, strconv.FormatFloat(line.Amount, 'f', -1, 64))
		}
	}

	s.total = Round2(s.total)
	s.recurringTotal = Round2(s.recurringTotal)
	if len(planName) > 2 {
		planName = planName[:len(planName)-2]
	}
	s.planName = planName
	return s
}
