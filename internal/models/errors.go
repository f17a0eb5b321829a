package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrEnumeration ErrorType = iota
	ErrGateway
	ErrExtract
	ErrPolicy
	ErrRegistry
	ErrExport
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrEnumeration:
		return "Enumeration"
	case ErrGateway:
		return "Gateway"
	case ErrExtract:
		return "Extract"
	case ErrPolicy:
		return "Policy"
	case ErrRegistry:
		return "Registry"
	case ErrExport:
		return "Export"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// ScanError represents an error during inventory scanning. Subject names the
// repository or file the error relates to, when one applies.
type ScanError struct {
	Type    ErrorType
	Subject string
	Err     error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *ScanError) Unwrap() error {
	return e.Err
}
