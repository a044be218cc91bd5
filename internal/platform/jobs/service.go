package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	JobLeaveBalances = "leave_balances"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunFunc performs one job for one clinic and returns details for job_runs.
type RunFunc func(ctx context.Context, tenantID string) (any, error)

type RunStore interface {
	StartRun(ctx context.Context, tenantID, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, details []byte) error
	ClinicIDs(ctx context.Context) ([]string, error)
}

type Service struct {
	Runs      RunStore
	queue     chan job
	schedules []schedule
	wg        sync.WaitGroup
}

type job struct {
	Type     string
	TenantID string
	Run      RunFunc
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      RunFunc
}

func New(runs RunStore) *Service {
	return &Service{
		Runs:  runs,
		queue: make(chan job, 128),
	}
}

// Every runs fn for every clinic once at Start and then on each interval.
// A non-positive interval disables the schedule.
func (s *Service) Every(jobType string, interval time.Duration, fn RunFunc) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: fn})
}

func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	for _, sc := range s.schedules {
		s.wg.Add(1)
		go func(sc schedule) {
			defer s.wg.Done()
			s.loop(ctx, sc)
		}(sc)
	}
}

// Wait blocks until every goroutine started by Start has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType, tenantID string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.Runs.StartRun(ctx, j.TenantID, j.Type)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, runErr := j.Run(ctx, j.TenantID)
	status := StatusCompleted
	if runErr != nil {
		status = StatusFailed
		details = map[string]any{"error": runErr.Error()}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		slog.Warn("job details marshal failed", "err", err)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if err := s.Runs.FinishRun(ctx, runID, status, detailsJSON); err != nil {
			slog.Warn("job run update failed", "jobType", j.Type, "err", err)
		}
	}
	slog.Info("job run finished", "jobType", j.Type, "tenantId", j.TenantID, "status", status)
	return details, runErr
}

func (s *Service) loop(ctx context.Context, sc schedule) {
	s.enqueueAll(ctx, sc)
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll(ctx, sc)
		}
	}
}

func (s *Service) enqueueAll(ctx context.Context, sc schedule) {
	clinics, err := s.Runs.ClinicIDs(ctx)
	if err != nil {
		slog.Warn("job scheduler clinic lookup failed", "jobType", sc.jobType, "err", err)
		return
	}
	for _, clinicID := range clinics {
		s.Enqueue(sc.jobType, clinicID, sc.run)
	}
}
