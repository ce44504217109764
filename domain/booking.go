package domain

// BookingResult is the outcome of a book or cancel mutation.
// Success reports the business result independently of transport success.
type BookingResult struct {
	Success   bool
	Message   string
	LaunchIDs []string
}

// LoginResult holds the identity returned by a successful login.
type LoginResult struct {
	UserID string
	Token  string
}

// Failure returns the business failure reported by the mutation, or nil when it succeeded.
func (r *BookingResult) Failure() error {
	if r.Success {
		return nil
	}
	return NewError(KindBusiness, r.Message, nil)
}
