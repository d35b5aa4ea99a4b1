package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParse,
				Message: "record text is not an object",
				Err:     nil,
			},
			expected: "parse: record text is not an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := NewExtractError("test message", wrappedErr)

	assert.Equal(t, wrappedErr, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, wrappedErr))
}

func TestAppError_Is(t *testing.T) {
	inputErr := NewInputError("a", nil)
	otherInputErr := NewInputError("b", nil)
	renderErr := NewRenderError("c", nil)

	assert.True(t, errors.Is(inputErr, otherInputErr))
	assert.False(t, errors.Is(inputErr, renderErr))
	assert.False(t, errors.Is(inputErr, errors.New("plain")))
}

func TestConstructors_SetStage(t *testing.T) {
	tests := []struct {
		err      *AppError
		expected ErrorType
	}{
		{NewInputError("m", nil), ErrorTypeInput},
		{NewExtractError("m", nil), ErrorTypeExtract},
		{NewParseError("m", nil), ErrorTypeParse},
		{NewFilterError("m", nil), ErrorTypeFilter},
		{NewRenderError("m", nil), ErrorTypeRender},
		{NewOutputError("m", nil), ErrorTypeOutput},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.err.Type)
	}
}

func TestUserFriendlyError_AppError(t *testing.T) {
	err := NewExtractError("failed reading input stream", errors.New("io timeout"))
	assert.Equal(t, "Extraction error: failed reading input stream", UserFriendlyError(err))
}

func TestUserFriendlyError_SentinelErrors(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{ErrEmptyInput, "input is empty"},
		{ErrNoTrigger, "trigger keyword"},
		{ErrNoRecords, "No records matched"},
		{ErrFileNotFound, "could not be found"},
		{ErrFileEmpty, "file is empty"},
		{ErrNoInput, "No input provided"},
		{ErrInvalidFilePath, "Invalid file path"},
		{ErrUnknownFormat, "Unknown output format"},
	}
	for _, tt := range tests {
		assert.Contains(t, UserFriendlyError(tt.err), tt.contains)
	}
}

func TestUserFriendlyError_GenericError(t *testing.T) {
	err := errors.New("something unexpected")
	assert.Equal(t, "Error: something unexpected", UserFriendlyError(err))
}
