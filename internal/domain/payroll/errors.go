package payroll

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid payroll input")
	ErrDuplicate     = errors.New("payroll already exists for this month")
	ErrStaffNotFound = errors.New("staff not found")
	ErrNotFound      = errors.New("payroll not found")
	ErrAlreadyPaid   = errors.New("payroll already paid")
)
