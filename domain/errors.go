package domain

// Kind classifies a failure crossing the repository boundary.
type Kind int

const (
	KindUnknown      Kind = iota
	KindTransport         // Network or transport level failure.
	KindGraphQL           // Non-empty errors array in an otherwise successful response.
	KindEmptyPayload      // Successful response without usable data.
	KindNotFound          // Well-formed response missing the requested entity.
	KindAuthRequired      // Local precondition failure before any network call.
	KindBusiness          // Mutation executed but reported success=false.
	KindValidation        // Local input validation failure.
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindGraphQL:
		return "graphql"
	case KindEmptyPayload:
		return "empty payload"
	case KindNotFound:
		return "not found"
	case KindAuthRequired:
		return "auth required"
	case KindBusiness:
		return "business"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the uniform failure returned by the gateway and the repositories.
// Message is human readable and is surfaced to the user verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error // Underlying cause, if any.
}

// Error returns the user facing message, falling back to the cause.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, ErrNotFound) matches any not found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError returns an *Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

var (
	ErrTransport    = &Error{Kind: KindTransport}
	ErrGraphQL      = &Error{Kind: KindGraphQL}
	ErrEmptyPayload = &Error{Kind: KindEmptyPayload}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrAuthRequired = &Error{Kind: KindAuthRequired}
	ErrBusiness     = &Error{Kind: KindBusiness}
	ErrValidation   = &Error{Kind: KindValidation}

	// ErrSecretNotFound is returned by a SecretStore when the requested value was never saved or was cleared.
	ErrSecretNotFound = &Error{Kind: KindNotFound, Message: "secret not found"}
)
