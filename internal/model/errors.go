package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrFundingExceedsTotal = errors.New("funded value exceeds total contract value")
	ErrFundingRequired     = errors.New("contract must have funding before activation")
	ErrDuplicateAssignment = errors.New("resource is already assigned to this contract")
	ErrNotAssigned         = errors.New("resource is not assigned to this contract")

	ErrInvalidAllocation = fmt.Errorf("%w: invalid allocation", ErrValidation)
	ErrInvalidDateRange  = fmt.Errorf("%w: invalid date range", ErrValidation)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return validationf("actor is required")
	}
	return nil
}
