package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(400, 20*time.Millisecond)
	c.Record(429, 0)
	c.Record(503, 30*time.Millisecond)
	c.Inc("payroll.pay")
	c.Inc("payroll.pay")

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 4 {
		t.Fatalf("unexpected total %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 || snap["rateLimitedTotal"].(uint64) != 1 || snap["clientErrorsTotal"].(uint64) != 2 {
		t.Fatalf("unexpected error counters %v", snap)
	}
	if snap["avgDurationMs"].(float64) != 15 {
		t.Fatalf("unexpected average %v", snap["avgDurationMs"])
	}
	if snap["events"].(map[string]uint64)["payroll.pay"] != 2 {
		t.Fatalf("unexpected events %v", snap["events"])
	}
}

func TestNilCollectorIncIsSafe(t *testing.T) {
	var c *Collector
	c.Inc("leave.request.review")
}
