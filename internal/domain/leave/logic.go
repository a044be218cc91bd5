package leave

import (
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"
)

const day = 24 * time.Hour

// DateOf drops the clock part of t, keeping its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalculateDays returns the inclusive count of calendar days between start and
// end. An end before start is an invalid range even within one day.
func CalculateDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date before start date", ErrInvalidRange)
	}
	return int(DateOf(end).Sub(DateOf(start))/day) + 1, nil
}

// EachDay lists every calendar day from start to end inclusive.
func EachDay(start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidRange)
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: DateOf(start),
		Until:   DateOf(end),
	})
	if err != nil {
		return nil, err
	}
	return rule.All(), nil
}

func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func ValidType(leaveType string) bool {
	return slices.Contains(Types, leaveType)
}

func ValidAction(action string) bool {
	return slices.Contains(ReviewActions, action)
}

// TracksBalance reports whether approving this type deducts from a yearly balance.
func TracksBalance(leaveType string) bool {
	_, ok := balanceColumns[leaveType]
	return ok
}

func AttendanceNote(leaveType string) string {
	return leaveType + " leave"
}

func ReviewMessage(action string) string {
	if action == StatusApproved {
		return MessageApproved
	}
	return MessageRejected
}
