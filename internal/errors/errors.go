package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrNoTrigger       = errors.New("no trigger keyword configured")
	ErrNoRecords       = errors.New("no records matched the trigger keyword")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe log data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrUnknownFormat   = errors.New("unknown output format")
)

// ErrorType categorizes errors by pipeline stage
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeExtract ErrorType = "extract"
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypeFilter  ErrorType = "filter"
	ErrorTypeRender  ErrorType = "render"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input sources
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewExtractError creates a new error related to record extraction
func NewExtractError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExtract,
		Message: message,
		Err:     err,
	}
}

// NewParseError creates a new error related to value parsing
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewFilterError creates a new error related to record filtering
func NewFilterError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFilter,
		Message: message,
		Err:     err,
	}
}

// NewRenderError creates a new error related to output rendering
func NewRenderError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRender,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to writing output
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeExtract:
			return fmt.Sprintf("Extraction error: %s", appErr.Message)
		case ErrorTypeParse:
			return fmt.Sprintf("Parse error: %s", appErr.Message)
		case ErrorTypeFilter:
			return fmt.Sprintf("Filter error: %s", appErr.Message)
		case ErrorTypeRender:
			return fmt.Sprintf("Render error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide log data containing records."
	}
	if errors.Is(err, ErrNoTrigger) {
		return "Error: No trigger keyword configured. Pass one with -t or set it in the config file."
	}
	if errors.Is(err, ErrNoRecords) {
		return "Error: No records matched the trigger keyword. Check the keyword passed with -t against the log content."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with log content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe log data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrUnknownFormat) {
		return "Error: Unknown output format. Valid formats are: json, pretty, table, csv."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
