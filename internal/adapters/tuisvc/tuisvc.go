// Package tuisvc provides the real implementation of ports.TUIService.
package tuisvc

import (
	"context"

	"github.com/mcdonaldj/autopush/internal/ports"
	"github.com/mcdonaldj/autopush/internal/scheduler"
)

// reportBuffer bounds how many periodic reports wait for the TUI to read them.
// Older reports are dropped rather than stalling the periodic loop.
const reportBuffer = 16

// Service implements ports.TUIService on top of a Scheduler.
type Service struct {
	sched   *scheduler.Scheduler
	reports chan ports.TUIBatchReport
}

// New creates a TUI service and registers it as the scheduler's batch hook.
func New(sched *scheduler.Scheduler) *Service {
	s := &Service{
		sched:   sched,
		reports: make(chan ports.TUIBatchReport, reportBuffer),
	}
	sched.SetBatchHook(s.publish)
	return s
}

// Repos returns the configured repositories in order.
func (s *Service) Repos() []string {
	return s.sched.Repos()
}

// CommitMessage returns the configured commit message.
func (s *Service) CommitMessage() string {
	return s.sched.CommitMessage()
}

// AddRepo adds a repository.
func (s *Service) AddRepo(path string) (bool, error) {
	return s.sched.AddRepo(path)
}

// RemoveRepo removes a repository.
func (s *Service) RemoveRepo(path string) (bool, error) {
	return s.sched.RemoveRepo(path)
}

// SetCommitMessage changes the commit message.
func (s *Service) SetCommitMessage(message string) error {
	return s.sched.SetCommitMessage(message)
}

// RunNow runs one batch and returns its report.
func (s *Service) RunNow(ctx context.Context) (ports.TUIBatchReport, error) {
	report, err := s.sched.RunOnce(ctx)
	if err != nil {
		return ports.TUIBatchReport{}, err
	}
	return convert(report), nil
}

// StartPeriodic enters periodic mode with the configured interval.
func (s *Service) StartPeriodic() error {
	return s.sched.StartPeriodic(0)
}

// StopPeriodic leaves periodic mode.
func (s *Service) StopPeriodic() error {
	return s.sched.StopPeriodic()
}

// Periodic reports whether periodic mode is active.
func (s *Service) Periodic() bool {
	return s.sched.State() == scheduler.Running
}

// Reports delivers periodic batch reports.
func (s *Service) Reports() <-chan ports.TUIBatchReport {
	return s.reports
}

// publish forwards periodic reports without blocking the loop.
// Manual runs are returned by RunNow directly.
func (s *Service) publish(r scheduler.BatchReport) {
	if !r.Periodic {
		return
	}
	select {
	case s.reports <- convert(r):
	default:
	}
}

func convert(r scheduler.BatchReport) ports.TUIBatchReport {
	out := ports.TUIBatchReport{
		RunID:    r.RunID,
		Periodic: r.Periodic,
		Finished: r.Finished,
		Results:  make([]ports.TUIRepoResult, len(r.Results)),
	}
	for i, res := range r.Results {
		out.Results[i] = ports.TUIRepoResult{
			Repo:    res.Repo,
			Outcome: res.Outcome.String(),
			Err:     res.Err,
		}
	}
	return out
}

// Compile-time check that Service implements ports.TUIService.
var _ ports.TUIService = (*Service)(nil)
