package errors

import (
	"fmt"
	"strings"
)

// IsError reports whether err is a structured *Error.
func IsError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// IsCode reports whether err is a structured error carrying the given code.
func IsCode(err error, code Code) bool {
	if e, ok := err.(*Error); ok {
		return e.Code.Equals(code)
	}
	return false
}

// GetCode extracts the code string from a structured error, or "" for
// standard errors.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code.String()
	}
	return ""
}

// GetContext extracts the context map from a structured error.
func GetContext(err error) map[string]string {
	if e, ok := err.(*Error); ok {
		return e.Context
	}
	return nil
}

// FormatError renders a structured error for multi-line log output.
func FormatError(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}

	parts := []string{
		fmt.Sprintf("Code: %s", e.Code),
		fmt.Sprintf("Message: %s", e.Message),
	}
	if len(e.Context) > 0 {
		parts = append(parts, "Context:")
		for k, v := range e.Context {
			parts = append(parts, fmt.Sprintf("  %s: %v", k, v))
		}
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}
	return strings.Join(parts, "\n")
}

// AsError converts any error to the internal *Error format. Structured errors
// are returned as-is; standard errors are wrapped under CommonInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(CommonInternal, err.Error(), err)
}
