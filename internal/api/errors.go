package api

import (
	"errors"
	"fmt"
)

// The error taxonomy every operation maps server responses into:
// ValidationError before any network call, NetworkError when no response
// arrived, AuthError on 401/403, BusinessError on 400 with a server
// message, NotFoundError on 404.

// ValidationError is a client-side input failure raised before any network
// call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError indicates the request got no usable response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage is the generic text shown for any connectivity failure.
func (e *NetworkError) UserMessage() string {
	return "Please check your internet connection and try again"
}

// AuthError indicates a 401 or 403 response. Callers clear the session and
// send the user back to login.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (HTTP %d)", e.StatusCode)
	}
	return e.Message
}

// BusinessError carries a 400 response's server message, shown to the user
// verbatim.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// NotFoundError indicates a 404 response. Benign for deletes, an error for
// fetches; the caller decides.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "resource not found"
	}
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsBusiness reports whether err is a BusinessError.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
