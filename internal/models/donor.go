package models

import "time"

// Donor is the persisted party owning a donation history. Looked up by
// (email, last name); one donor accumulates many transactions. The
// customer reference links the row to the processor-side customer and may
// be empty until the first card checkout.
type Donor struct {
	ID           uint   `gorm:"primarykey"`
	CustomerRef  string `gorm:"index"`
	FourDigit    string
	Email        string `gorm:"not null;index:idx_donors_email_lname"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null;index:idx_donors_email_lname"`
	Organization string
	Street       string
	City         string
	State        string
	Zip          string
	Country      string
	Phone        string
	GiftAid      bool `gorm:"default:false"`
	Mailchimp    bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
