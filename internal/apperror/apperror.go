// Package apperror defines the API error kinds and maps data store failures
// onto them.
package apperror

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error is an API failure with a fixed status code.
type Error struct {
	Status    int
	Message   string
	Details   any
	Timestamp time.Time
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Envelope renders the error as the outward response body.
func (e *Error) Envelope() ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     e.Message,
		Details:   e.Details,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func newError(status int, message string, details any) *Error {
	return &Error{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

func BadRequest(message string, details any) *Error {
	return newError(http.StatusBadRequest, message, details)
}

func NotFound(message string) *Error {
	return newError(http.StatusNotFound, message, nil)
}

func Conflict(message string, details any) *Error {
	return newError(http.StatusConflict, message, details)
}

func Internal(message string) *Error {
	return newError(http.StatusInternalServerError, message, nil)
}

func ServiceUnavailable(message string) *Error {
	return newError(http.StatusServiceUnavailable, message, nil)
}

const genericInternalMessage = "Internal server error"

// From converts any error into an *Error. API errors pass through unchanged,
// Postgres failures are classified, and anything else becomes a 500 whose
// message is hidden in production.
func From(err error, production bool) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if mapped := fromDatabase(err); mapped != nil {
		mapped.Err = err
		return mapped
	}

	msg := genericInternalMessage
	if !production {
		msg = err.Error()
	}

	e := Internal(msg)
	e.Err = err
	return e
}

func fromDatabase(err error) *Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return Conflict("Duplicate entry", pgErr.Detail)
		case pgErr.Code == pgerrcode.ForeignKeyViolation:
			return BadRequest("Invalid reference", pgErr.Detail)
		case pgErr.Code == pgerrcode.InvalidTextRepresentation:
			return BadRequest("Invalid data format", nil)
		case pgErr.Code == pgerrcode.NotNullViolation,
			pgErr.Code == pgerrcode.CheckViolation:
			return BadRequest("Invalid data", pgErr.Message)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return ServiceUnavailable("Database connection failed")
		}
		return nil
	}

	if IsUnavailable(err) {
		return ServiceUnavailable("Database connection failed")
	}

	return nil
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
