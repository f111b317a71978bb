package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Gateway errors

func ErrMissingAuth() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_MISSING_CREDENTIALS,
		Message:  "Authentication required",
	}
}

func ErrInvalidSignature() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_SIGNATURE,
		Message:  "Invalid webhook signature",
	}
}

func ErrInvalidBearerToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid authorization token",
	}
}

func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_PAYLOAD_INVALID,
		Message:  "Invalid payload format",
	}
}

func ErrDedupStore(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DEDUP_STORE_FAILED,
		Message:  "Delivery store operation failed",
	}
}

// Pipeline errors

func ErrContextLoadFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CONTEXT_LOAD_FAILED,
		Message:  "Failed to load knowledge-base context",
	}
}

func ErrUpstreamAI(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_AI_UPSTREAM_FAILED,
		Message:  "AI processing call failed",
	}
}

// ErrAIDeclined marks a structured refusal from the model (valid error schema)
func ErrAIDeclined(errorType, message string) AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_AI_DECLINED,
		Message:  "AI declined to produce output",
	}.WithDetail("error_type", errorType).
		WithDetail("error_message", message)
}

func ErrMalformedAIOutput(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_AI_MALFORMED_OUTPUT,
		Message:  "AI produced malformed output",
	}
}

// Mutation errors

func ErrMutationFailed(index int, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_MUTATION_FAILED,
		Message:  "File mutation failed",
	}.WithDetail("mutation_index", fmt.Sprintf("%d", index))
}

func ErrPathRejected(path string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MUTATION_PATH_REJECTED,
		Message:  "Mutation path rejected",
	}.WithDetail("path", path)
}

func ErrCommitFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_COMMIT_FAILED,
		Message:  "Version-control commit failed",
	}
}

// Best-effort side effect errors

func ErrNotificationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_NOTIFICATION_FAILED,
		Message:  "Notification delivery failed",
	}
}

func ErrPresentationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PRESENTATION_FAILED,
		Message:  "Presentation generation failed",
	}
}

// Dead letter errors

func ErrDeadLetterNotFound(deliveryID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_DEADLETTER_NOT_FOUND,
		Message:  "No dead letter found for delivery",
	}.WithDetail("delivery_id", deliveryID)
}

func ErrDeadLetterStore(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DEADLETTER_STORE_FAILED,
		Message:  "Failed to persist dead letter",
	}
}
