package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

// HTTPError is the transport form of a failure: a status plus the stable code clients
// switch on.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError with an explicit status.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError derives status and code from a typed domain error. fallbackCode is
// used when err carries no code.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = fallbackCode
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	return NewHTTPError(statusForCode(code), code, message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if apperrors.CodeOf(err) != "" {
		return fromDomainError(err, apperrors.CodeInternal)
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// statusForCode maps summarizer failure codes onto HTTP statuses. Upstream model
// problems surface as 502 so the retry wrapper and clients can tell them apart from
// bad input.
func statusForCode(code string) int {
	switch code {
	case apperrors.CodeEmptyInput, apperrors.CodeInvalidParameters:
		return http.StatusBadRequest
	case apperrors.CodeUnknownModel:
		return http.StatusNotFound
	case apperrors.CodeTextTooLong:
		return http.StatusRequestEntityTooLarge
	case apperrors.CodeLoadError, apperrors.CodeInferenceError:
		return http.StatusBadGateway
	case apperrors.CodeCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
