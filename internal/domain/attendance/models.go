package attendance

import "time"

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLeave   = "LEAVE"
	StatusHalfDay = "HALF_DAY"
)

type Record struct {
	ID        string     `json:"id"`
	StaffID   string     `json:"staffId"`
	StaffName string     `json:"staffName,omitempty"`
	Date      time.Time  `json:"date"`
	Status    string     `json:"status"`
	ClockIn   *time.Time `json:"clockIn,omitempty"`
	ClockOut  *time.Time `json:"clockOut,omitempty"`
	Notes     string     `json:"notes"`
	MarkedBy  string     `json:"markedBy,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ListFilter struct {
	StaffID string
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}
