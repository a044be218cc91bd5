package staff

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Staff struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Role            string          `json:"role"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	Allowances      decimal.Decimal `json:"allowances"`
	HRA             decimal.Decimal `json:"hra"`
	OtherAllowances decimal.Decimal `json:"otherAllowances"`
	JoinedOn        *time.Time      `json:"joinedOn,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s Staff) Summary() Summary {
	return Summary{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Role: s.Role}
}

// Summary is the staff projection attached to leave and payroll responses.
type Summary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (s Summary) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type ListFilter struct {
	Status string
	Role   string
	Limit  int
	Offset int
}
