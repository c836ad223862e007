package mocks

import (
	"context"
	"slices"

	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// MockTUIService implements ports.TUIService for testing.
type MockTUIService struct {
	// RepoList is the configured repository list
	RepoList []string
	// Message is the configured commit message
	Message string
	// Running reports periodic mode
	Running bool

	// Report is returned from RunNow
	Report ports.TUIBatchReport
	// Errors maps method names to errors
	Errors map[string]error
	// ReportCh backs Reports
	ReportCh chan ports.TUIBatchReport

	// Call tracking
	RunNowCalls int
	StartCalls  int
	StopCalls   int
}

// NewMockTUIService creates a new mock TUI service.
func NewMockTUIService() *MockTUIService {
	return &MockTUIService{
		Message:  "Automated commit",
		Errors:   make(map[string]error),
		ReportCh: make(chan ports.TUIBatchReport, 4),
	}
}

func (m *MockTUIService) Repos() []string { return slices.Clone(m.RepoList) }

func (m *MockTUIService) CommitMessage() string { return m.Message }

func (m *MockTUIService) AddRepo(path string) (bool, error) {
	if err, ok := m.Errors["AddRepo"]; ok {
		return false, err
	}
	if slices.Contains(m.RepoList, path) {
		return false, nil
	}
	m.RepoList = append(m.RepoList, path)
	return true, nil
}

func (m *MockTUIService) RemoveRepo(path string) (bool, error) {
	if err, ok := m.Errors["RemoveRepo"]; ok {
		return false, err
	}
	i := slices.Index(m.RepoList, path)
	if i < 0 {
		return false, nil
	}
	m.RepoList = slices.Delete(m.RepoList, i, i+1)
	return true, nil
}

func (m *MockTUIService) SetCommitMessage(message string) error {
	if err, ok := m.Errors["SetCommitMessage"]; ok {
		return err
	}
	m.Message = message
	return nil
}

func (m *MockTUIService) RunNow(ctx context.Context) (ports.TUIBatchReport, error) {
	m.RunNowCalls++
	if err, ok := m.Errors["RunNow"]; ok {
		return ports.TUIBatchReport{}, err
	}
	return m.Report, nil
}

func (m *MockTUIService) StartPeriodic() error {
	m.StartCalls++
	if m.Running {
		return errors.ErrAlreadyRunning
	}
	m.Running = true
	return nil
}

func (m *MockTUIService) StopPeriodic() error {
	m.StopCalls++
	if !m.Running {
		return errors.ErrNotRunning
	}
	m.Running = false
	return nil
}

func (m *MockTUIService) Periodic() bool { return m.Running }

func (m *MockTUIService) Reports() <-chan ports.TUIBatchReport { return m.ReportCh }

// Compile-time check that MockTUIService implements ports.TUIService.
var _ ports.TUIService = (*MockTUIService)(nil)
