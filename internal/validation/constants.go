package validation

import "regexp"

const (
	// Amount limits per cart line
	MinLineAmount = 0.01
	MaxLineAmount = 100000.00

	// Quantity limits per cart line
	MinLineQuantity = 1
	MaxLineQuantity = 1000

	// String lengths
	MaxCommentLength = 500
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)
