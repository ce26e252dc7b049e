package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat         = errors.New("unsupported document format")
	ErrExtractionFailed          = errors.New("document text extraction failed")
	ErrProviderUnavailable       = errors.New("ai provider unavailable")
	ErrProviderContractViolation = errors.New("ai provider response violated the output contract")
	ErrInferenceTimeout          = errors.New("ai inference timeout")
	ErrUnauthorized              = errors.New("caller is not authorized for this resource")
	ErrInvalidRequest            = errors.New("invalid analysis request")
)

// FormatError describes a rejected upload and how the user can fix it.
type FormatError struct {
	FileName   string
	Extension  string
	Reason     string
	Suggestion string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// ContractViolationError carries the raw model output that could not be
// interpreted.
type ContractViolationError struct {
	Provider string
	Reason   string
	Raw      string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s response: %s", e.Provider, e.Reason)
}

func (e *ContractViolationError) Unwrap() error { return ErrProviderContractViolation }

// UnavailableError explains why no request could be sent to a provider.
type UnavailableError struct {
	Provider string
	Reason   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrProviderUnavailable }
