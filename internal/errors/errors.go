package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different classes of ledger errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeTransport       ErrorType = "transport"
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeNotice          ErrorType = "notice"
	ErrorTypeCancelled       ErrorType = "cancelled"
	ErrorTypeInternal        ErrorType = "internal"
)

// Error codes shared by the sentinels below
const (
	CodeEmptyQuery      = "EMPTY_QUERY"
	CodeNoMatches       = "NO_MATCHES"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeInvalidSection  = "INVALID_SECTION"
	CodeTransport       = "TRANSPORT"
	CodeBelowFloor      = "BELOW_FLOOR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeEntryNotFound   = "ENTRY_NOT_FOUND"
	CodeEntryBusy       = "ENTRY_BUSY"
	CodeDayStale        = "DAY_STALE"
	CodeLoadSuperseded  = "LOAD_SUPERSEDED"
	CodeInternal        = "INTERNAL"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches another AppError by type and code, so errors.Is works against
// the predefined sentinels regardless of message or context.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return newAt(2, nil, errorType, code, message)
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return newAt(2, err, errorType, code, message)
}

func newAt(skip int, err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(skip)
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   fmt.Sprintf("%s:%d", file, line),
		Context:  make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain,
// or ErrorTypeInternal if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle logs an error at a level matching its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeNotice, ErrorTypeCancelled:
		h.logger.DebugContext(ctx, "Ledger notice", err.LogFields()...)
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict:
		h.logger.WarnContext(ctx, "Rejected request", err.LogFields()...)
	case ErrorTypeTransport:
		h.logger.WarnContext(ctx, "Transport error", err.LogFields()...)
	case ErrorTypeUnauthenticated:
		h.logger.ErrorContext(ctx, "Unauthenticated", err.LogFields()...)
	case ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// Predefined errors, intended as errors.Is targets
var (
	ErrEmptyQuery      = New(ErrorTypeValidation, CodeEmptyQuery, "Search term is empty")
	ErrNoMatches       = New(ErrorTypeValidation, CodeNoMatches, "No food items found")
	ErrInvalidQuantity = New(ErrorTypeValidation, CodeInvalidQuantity, "Invalid quantity")
	ErrInvalidSection  = New(ErrorTypeValidation, CodeInvalidSection, "Invalid meal section")
	ErrTransport       = New(ErrorTypeTransport, CodeTransport, "Remote call failed")
	ErrBelowFloor      = New(ErrorTypeNotice, CodeBelowFloor, "Date is before account creation")
	ErrUnauthenticated = New(ErrorTypeUnauthenticated, CodeUnauthenticated, "Missing or expired credential")
	ErrEntryNotFound   = New(ErrorTypeNotFound, CodeEntryNotFound, "Meal entry not found")
	ErrEntryBusy       = New(ErrorTypeConflict, CodeEntryBusy, "Meal entry has a pending change")
	ErrDayStale        = New(ErrorTypeConflict, CodeDayStale, "Shown day differs from the requested day")
	ErrLoadSuperseded  = New(ErrorTypeCancelled, CodeLoadSuperseded, "Load superseded by a newer date")
	ErrInternal        = New(ErrorTypeInternal, CodeInternal, "Internal error")
)

// Convenience constructors

func NewEmptyQueryError() *AppError {
	return newAt(2, nil, ErrorTypeValidation, CodeEmptyQuery, "Please enter a food item to search")
}

func NewNoMatchesError(term string) *AppError {
	return newAt(2, nil, ErrorTypeValidation, CodeNoMatches, "No food items found").
		WithContext("term", term)
}

func NewInvalidQuantityError(quantity float64, reason string) *AppError {
	return newAt(2, nil, ErrorTypeValidation, CodeInvalidQuantity, fmt.Sprintf("Invalid quantity %g: %s", quantity, reason)).
		WithContext("quantity", quantity)
}

func NewInvalidSectionError(section string) *AppError {
	return newAt(2, nil, ErrorTypeValidation, CodeInvalidSection, fmt.Sprintf("Unknown meal section %q", section)).
		WithContext("section", section)
}

func NewTransportError(err error, operation string) *AppError {
	return newAt(2, err, ErrorTypeTransport, CodeTransport, fmt.Sprintf("%s failed", operation)).
		WithContext("operation", operation)
}

func NewBelowFloorError(floor string) *AppError {
	return newAt(2, nil, ErrorTypeNotice, CodeBelowFloor, fmt.Sprintf("Dates cannot be before account creation (%s)", floor)).
		WithContext("floor", floor)
}

func NewUnauthenticatedError(reason string) *AppError {
	return newAt(2, nil, ErrorTypeUnauthenticated, CodeUnauthenticated, reason)
}

func NewEntryNotFoundError(entryID string) *AppError {
	return newAt(2, nil, ErrorTypeNotFound, CodeEntryNotFound, "Meal entry not found").
		WithContext("entry_id", entryID)
}

func NewEntryBusyError(entryID string) *AppError {
	return newAt(2, nil, ErrorTypeConflict, CodeEntryBusy, "Meal entry has a pending change").
		WithContext("entry_id", entryID)
}

// NewDayStaleError reports a write attempted while the ledger shows a day
// other than the one last requested
func NewDayStaleError(shown, requested string) *AppError {
	return newAt(2, nil, ErrorTypeConflict, CodeDayStale, "Shown day differs from the requested day").
		WithContext("shown", shown).
		WithContext("requested", requested)
}

func NewLoadSupersededError(date string) *AppError {
	return newAt(2, nil, ErrorTypeCancelled, CodeLoadSuperseded, "Load superseded by a newer date").
		WithContext("date", date)
}

func NewInternalError(err error) *AppError {
	return newAt(2, err, ErrorTypeInternal, CodeInternal, "Internal error")
}
