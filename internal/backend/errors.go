package backend

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindSerialization
	KindNetwork
	KindInvalidResponse
	KindHTTP
	KindAuthentication
	KindServer
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindSerialization:
		return "serialization"
	case KindNetwork:
		return "network"
	case KindInvalidResponse:
		return "invalid_response"
	case KindHTTP:
		return "http"
	case KindAuthentication:
		return "authentication"
	case KindServer:
		return "server"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidURL      = errors.New("invalid backend url")
	ErrSerialization   = errors.New("request serialization failed")
	ErrNetwork         = errors.New("network error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrHTTP            = errors.New("http error")
	ErrAuthentication  = errors.New("authentication error")
	ErrServer          = errors.New("server error")
	ErrDecoding        = errors.New("decoding error")
	ErrUnknown         = errors.New("unknown error")

	// ErrUnrecognizedShape is returned when the workout plan is neither a
	// string nor a list of text blocks. It is reported as a decoding error.
	ErrUnrecognizedShape = errors.New("unrecognized workout plan shape")
)

var kindSentinels = map[Kind]error{
	KindInvalidURL:      ErrInvalidURL,
	KindSerialization:   ErrSerialization,
	KindNetwork:         ErrNetwork,
	KindInvalidResponse: ErrInvalidResponse,
	KindHTTP:            ErrHTTP,
	KindAuthentication:  ErrAuthentication,
	KindServer:          ErrServer,
	KindDecoding:        ErrDecoding,
	KindUnknown:         ErrUnknown,
}

// Error is every failure the fitness backend client returns.
type Error struct {
	Kind       Kind
	StatusCode int // set for status derived kinds
	Err        error
}

func newError(kind Kind, statusCode int, err error) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, Err: err}
}

func (e *Error) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// UserMessage is what the UI shows next to the retry action.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindInvalidURL:
		return "The service address is misconfigured."
	case KindSerialization:
		return "Could not prepare the request."
	case KindNetwork:
		return "Network problem, check your connection and try again."
	case KindInvalidResponse:
		return "Received an invalid response from the server."
	case KindHTTP:
		return fmt.Sprintf("Request failed with status %d.", e.StatusCode)
	case KindAuthentication:
		return "Authentication failed, please sign in again."
	case KindServer:
		return "The server ran into a problem, try again later."
	case KindDecoding:
		return "Could not read the server response."
	default:
		return "Something went wrong."
	}
}

// KindOf returns the kind of a backend error, or KindUnknown for anything else.
func KindOf(err error) Kind {
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Kind
	}
	return KindUnknown
}

// classifyStatus maps a non 2xx status code to an error kind.
func classifyStatus(statusCode int) Kind {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return KindAuthentication
	case statusCode >= 500 && statusCode <= 599:
		return KindServer
	case statusCode >= 400 && statusCode <= 499:
		return KindHTTP
	default:
		return KindUnknown
	}
}
