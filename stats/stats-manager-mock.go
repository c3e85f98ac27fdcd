package stats

type MockStatsManager struct{}

func (s *MockStatsManager) StartDumping() {}

func (s *MockStatsManager) StopDumping() {}

func (s *MockStatsManager) AddTaskWatcher(taskName string) *TaskWatcher {
	return NewTaskWatcher(taskName)
}

func (s *MockStatsManager) RecordRows(taskName string, rows int64) {}

func (s *MockStatsManager) GetStats() []Stats {
	return nil
}

func NewMockStatsManager() *MockStatsManager {
	return &MockStatsManager{}
}
