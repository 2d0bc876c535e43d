package validation

import (
	"errors"
	"net/http"
)

// Kind classifies a failed rule and decides the response status.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindNotFound
	KindServerError
	kindSkip
)

// Messages shared by the resource rules and the gate.
const (
	MsgNotFound      = "not found"
	MsgServerError   = "server error"
	MsgAlreadyExists = "already exists"
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindServerError:
		return "server_error"
	case kindSkip:
		return "skip"
	default:
		return "bad_request"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// severity orders kinds for status selection: server error > not found > unauthorized > bad request.
func (k Kind) severity() int {
	switch k {
	case KindServerError:
		return 3
	case KindNotFound:
		return 2
	case KindUnauthorized:
		return 1
	default:
		return 0
	}
}

// Failure is an intentional rejection returned by a predicate.
// An empty Message falls back to the rule's message.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return "validation failed: " + f.Kind.String()
	}
	return f.Message
}

var (
	// ErrInvalid fails the rule with its own message and kind.
	ErrInvalid = errors.New("invalid value")

	// ErrSkip records a synthetic outcome that never reaches the client. Predicates
	// return it when a related, more specific rule already reports the problem.
	ErrSkip = errors.New("skip")
)

// Reject builds a Failure with an explicit kind and message.
func Reject(kind Kind, message string) error {
	return &Failure{Kind: kind, Message: message}
}
