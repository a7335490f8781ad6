package contract

import "errors"

var (
	ErrCapabilityUnavailable = errors.New("llm capability unavailable")
	ErrToolFailure           = errors.New("tool call failed")
	ErrValidation            = errors.New("validation failed")
	ErrModelInvoke           = errors.New("model invocation failed")
	ErrSchemaViolation       = errors.New("model response violates schema")
)
