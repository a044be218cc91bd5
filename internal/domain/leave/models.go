package leave

import (
	"time"

	"clinic/internal/domain/staff"
)

type Request struct {
	ID           string         `json:"id"`
	StaffID      string         `json:"staffId"`
	LeaveType    string         `json:"leaveType"`
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	TotalDays    int            `json:"totalDays"`
	Reason       string         `json:"reason"`
	Status       string         `json:"status"`
	ReviewedBy   string         `json:"reviewedBy,omitempty"`
	ReviewerName string         `json:"reviewerName,omitempty"`
	ReviewNotes  string         `json:"reviewNotes,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewedAt,omitempty"`
	AppliedAt    time.Time      `json:"appliedAt"`
	Staff        *staff.Summary `json:"staff,omitempty"`
}

type Balance struct {
	ID                 string    `json:"id"`
	StaffID            string    `json:"staffId"`
	Year               int       `json:"year"`
	SickLeaveUsed      int       `json:"sickLeaveUsed"`
	SickLeaveBalance   int       `json:"sickLeaveBalance"`
	CasualLeaveUsed    int       `json:"casualLeaveUsed"`
	CasualLeaveBalance int       `json:"casualLeaveBalance"`
	EarnedLeaveUsed    int       `json:"earnedLeaveUsed"`
	EarnedLeaveBalance int       `json:"earnedLeaveBalance"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Available returns the remaining days for a balance-tracked type.
func (b Balance) Available(leaveType string) (int, bool) {
	switch leaveType {
	case TypeSick:
		return b.SickLeaveBalance, true
	case TypeCasual:
		return b.CasualLeaveBalance, true
	case TypeEarned:
		return b.EarnedLeaveBalance, true
	default:
		return 0, false
	}
}

// Deduct moves days from the remaining to the used counter of leaveType.
func (b *Balance) Deduct(leaveType string, days int) {
	switch leaveType {
	case TypeSick:
		b.SickLeaveUsed += days
		b.SickLeaveBalance -= days
	case TypeCasual:
		b.CasualLeaveUsed += days
		b.CasualLeaveBalance -= days
	case TypeEarned:
		b.EarnedLeaveUsed += days
		b.EarnedLeaveBalance -= days
	}
}

type ApplyInput struct {
	StaffID   string
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

type ReviewInput struct {
	LeaveID     string
	Action      string
	ReviewNotes string
	ReviewedBy  string
	MarkedBy    string
}

type ListFilter struct {
	StaffID   string
	Status    string
	LeaveType string
}

type ListResult struct {
	Leaves       []Request `json:"leaves"`
	LeaveBalance *Balance  `json:"leaveBalance"`
}

type ReviewResult struct {
	Leave   Request `json:"leave"`
	Message string  `json:"message"`
}

type BalanceInput struct {
	StaffID            string
	Year               int
	SickLeaveBalance   int
	CasualLeaveBalance int
	EarnedLeaveBalance int
}

// Entitlements are the yearly defaults seeded for staff without a balance row.
type Entitlements struct {
	Sick   int
	Casual int
	Earned int
}

type BalanceRunSummary struct {
	Year            int `json:"year"`
	BalancesCreated int `json:"balancesCreated"`
}
