package leave

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid leave input")
	ErrInvalidRange        = errors.New("invalid date range")
	ErrNotFound            = errors.New("leave request not found")
	ErrStaffNotFound       = errors.New("staff not found")
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrAlreadyProcessed    = errors.New("leave already processed")
	ErrOverlap             = errors.New("leave request overlaps with an existing request")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// InsufficientBalanceError names the leave type whose balance is short.
type InsufficientBalanceError struct {
	LeaveType string
	Requested int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance: requested %d, available %d", strings.ToLower(e.LeaveType), e.Requested, e.Available)
}

// Message is the client-facing wording.
func (e *InsufficientBalanceError) Message() string {
	return fmt.Sprintf("Insufficient %s leave balance", strings.ToLower(e.LeaveType))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
