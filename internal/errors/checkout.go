package errors

var (
	ErrEmptyCart = &DomainError{
		Code:    "EMPTY_CART",
		Message: "your donation cart is empty or has expired",
	}
	ErrUnsupportedFrequency = &DomainError{
		Code:    "UNSUPPORTED_FREQUENCY",
		Message: "unsupported donation frequency",
	}
	ErrPaymentMethodRejected = &DomainError{
		Code:    "PAYMENT_METHOD_REJECTED",
		Message: "card details were rejected by the payment processor",
	}
	ErrDonorResolutionFailed = &DomainError{
		Code:    "DONOR_RESOLUTION_FAILED",
		Message: "unable to resolve donor record",
	}
	ErrChargeDeclined = &DomainError{
		Code:    "CHARGE_DECLINED",
		Message: "unable to make transaction",
	}
	ErrPlanCreationFailed = &DomainError{
		Code:    "PLAN_CREATION_FAILED",
		Message: "recurring plan setup failed",
	}
	ErrScheduleDetailNotFound = &DomainError{
		Code:    "SCHEDULE_DETAIL_NOT_FOUND",
		Message: "no recorded schedule matches this recurring donation",
	}
	ErrPersistenceFailed = &DomainError{
		Code:    "PERSISTENCE_FAILED",
		Message: "failed to record transaction",
	}
	ErrNotificationFailed = &DomainError{
		Code:    "NOTIFICATION_FAILED",
		Message: "failed to send operations alert",
	}
)
