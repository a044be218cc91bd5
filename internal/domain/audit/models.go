package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionLeaveCreate     = "leave.request.create"
	ActionLeaveReview     = "leave.request.review"
	ActionLeaveBalanceSet = "leave.balance.set"
	ActionLeaveBalanceRun = "leave.balance.run"
	ActionPayrollGenerate = "payroll.generate"
	ActionPayrollPay      = "payroll.pay"
	ActionStaffCreate     = "staff.create"
	ActionAuthLogin       = "auth.login"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Entry is one mutation to record.
type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
	Offset     int
}
