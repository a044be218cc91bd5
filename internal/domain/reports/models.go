package reports

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// StaffDashboard is the summary a staff member sees about themselves.
type StaffDashboard struct {
	StaffID        string `json:"staffId"`
	Year           int    `json:"year"`
	LeaveRemaining int    `json:"leaveRemaining"`
	LeaveUsed      int    `json:"leaveUsed"`
	PendingLeaves  int    `json:"pendingLeaves"`
	PayrollCount   int    `json:"payrollCount"`
}

// ClinicDashboard summarises open work and the current month's spend.
type ClinicDashboard struct {
	ActiveStaff     int             `json:"activeStaff"`
	PendingLeaves   int             `json:"pendingLeaves"`
	OnLeaveToday    int             `json:"onLeaveToday"`
	PendingPayrolls int             `json:"pendingPayrolls"`
	PendingPayroll  decimal.Decimal `json:"pendingPayrollAmount"`
	MonthExpenses   decimal.Decimal `json:"monthExpenses"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
}

type LeaveTotals struct {
	Remaining int
	Used      int
}

type JobRun struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	JobType string
	Status  string
	Limit   int
	Offset  int
}
