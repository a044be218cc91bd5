package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategorySalary = "SALARY"

	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

type Expense struct {
	ID               string          `json:"id"`
	ExpenseNumber    string          `json:"expenseNumber"`
	Category         string          `json:"category"`
	Subcategory      string          `json:"subcategory"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	VendorName       string          `json:"vendorName"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	ExpenseDate      time.Time       `json:"expenseDate"`
	PayrollID        string          `json:"payrollId,omitempty"`
	AddedBy          string          `json:"addedBy,omitempty"`
	ApprovedBy       string          `json:"approvedBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type ListFilter struct {
	Category string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

type ListResult struct {
	Expenses []Expense       `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
}
