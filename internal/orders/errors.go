package orders

// ValidationError is caller input that fails a precondition. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingOrderID = &ValidationError{Field: "orderId", Message: "missing order id"}
	ErrMissingNote    = &ValidationError{Field: "note", Message: "missing note"}
	ErrInvalidEmail   = &ValidationError{Field: "email", Message: "invalid email"}
)
