package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"clinic/internal/domain/staff"
)

type Payroll struct {
	ID               string          `json:"id"`
	StaffID          string          `json:"staffId"`
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	BasicSalary      decimal.Decimal `json:"basicSalary"`
	Allowances       decimal.Decimal `json:"allowances"`
	HRA              decimal.Decimal `json:"hra"`
	OtherAllowances  decimal.Decimal `json:"otherAllowances"`
	TotalWorkingDays int             `json:"totalWorkingDays"`
	DaysPresent      int             `json:"daysPresent"`
	DaysAbsent       int             `json:"daysAbsent"`
	AbsenceDeduction decimal.Decimal `json:"absenceDeduction"`
	OtherDeductions  decimal.Decimal `json:"otherDeductions"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	GrossSalary      decimal.Decimal `json:"grossSalary"`
	NetSalary        decimal.Decimal `json:"netSalary"`
	PayrollNumber    string          `json:"payrollNumber"`
	Status           string          `json:"status"`
	PaymentDate      *time.Time      `json:"paymentDate,omitempty"`
	PaymentMethod    string          `json:"paymentMethod,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PaidBy           string          `json:"paidBy,omitempty"`
	PaidByName       string          `json:"paidByName,omitempty"`
	GeneratedBy      string          `json:"generatedBy,omitempty"`
	GeneratedByName  string          `json:"generatedByName,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	Staff            *staff.Summary  `json:"staff,omitempty"`
}

// Components are the four salary parts that add up to gross pay.
type Components struct {
	Basic      decimal.Decimal
	Allowances decimal.Decimal
	HRA        decimal.Decimal
	Other      decimal.Decimal
}

type Breakdown struct {
	Gross            decimal.Decimal
	AbsenceDeduction decimal.Decimal
	TotalDeductions  decimal.Decimal
	Net              decimal.Decimal
}

type GenerateInput struct {
	StaffID          string
	Month            int
	Year             int
	Overrides        Components
	TotalWorkingDays int
	DaysPresent      int
	DaysAbsent       int
	OtherDeductions  decimal.Decimal
	Notes            string
	GeneratedBy      string
}

type PayInput struct {
	PayrollID        string
	PaymentDate      *time.Time
	PaymentMethod    string
	PaymentReference string
	PaidBy           string
	AddedBy          string
}

type PayResult struct {
	Payroll Payroll `json:"payroll"`
	Message string  `json:"message"`
}

type ListFilter struct {
	StaffID string
	Month   int
	Year    int
	Status  string
}

type Stats struct {
	TotalPayrolls   int             `json:"totalPayrolls"`
	TotalGross      decimal.Decimal `json:"totalGross"`
	TotalNet        decimal.Decimal `json:"totalNet"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	PendingCount    int             `json:"pendingCount"`
	PendingAmount   decimal.Decimal `json:"pendingAmount"`
}

type ListResult struct {
	Payrolls []Payroll `json:"payrolls"`
	Stats    Stats     `json:"stats"`
}
