package models

import "time"

// Stored transaction statuses
const (
	TransactionStatusCompleted = "Completed"
	TransactionStatusDeclined  = "Declined"

	TransactionReasonApproved = "Approved"
	TransactionReasonDeclined = "Declined"
)

// Transaction is the header record for one checkout.
type Transaction struct {
	ID              uint   `gorm:"primarykey"`
	DonorID         uint   `gorm:"not null;index"`
	InvoiceID       string `gorm:"not null"`
	OrderNo         string `gorm:"not null;index"`
	ChargeID        string
	CardFee         float64
	TotalAmount     float64 `gorm:"not null"`
	CartAmount      float64 `gorm:"not null"`
	ProcessorStatus string
	Reason          string
	Comments        string
	PaymentType     string `gorm:"not null"`
	Status          string `gorm:"not null"`
	Currency        string `gorm:"default:'USD'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleDetail is one row per cart line. Recurring lines get a row only
// on their first billing cycle; later cycles locate the existing row by
// (amount, quantity, frequency code, amount id, appeal id) and decrement
// RemainingIterations.
type ScheduleDetail struct {
	ID                  uint `gorm:"primarykey"`
	TransactionID       uint `gorm:"not null;index"`
	AppealID            string
	AmountID            string
	HandlerID           string
	SubscriptionRef     string
	Amount              float64 `gorm:"not null"`
	Quantity            int     `gorm:"not null;default:1"`
	FrequencyCode       int     `gorm:"not null;index"`
	StartDate           string
	TotalIterations     int
	RemainingIterations int
	Currency            string `gorm:"default:'USD'"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CardRecord stores the non-sensitive card suffix and expiry for one
// transaction.
type CardRecord struct {
	ID            uint `gorm:"primarykey"`
	TransactionID uint `gorm:"not null;index"`
	DonorID       uint `gorm:"not null;index"`
	InvoiceID     string
	OrderNo       string
	FourDigit     string
	ExpMonth      string
	ExpYear       string
	CreatedAt     time.Time
}

// EmployerMatch records an optional employer gift-matching request.
type EmployerMatch struct {
	ID            uint `gorm:"primarykey"`
	DonorID       uint `gorm:"not null;index"`
	EmployerName  string
	EmployerEmail string
	CreatedAt     time.Time
}
