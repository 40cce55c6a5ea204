package transcode_test

import (
	"io"
	"os"
	"syscall"

	"github.com/stretchr/testify/mock"

	"github.com/Blackmvmba88/music/internal/transcode"
)

// MockCommandExecutor implements CommandExecutor for testing.
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Command(name string, args ...string) transcode.Commander {
	mockArgs := m.Called(name, args)
	return mockArgs.Get(0).(transcode.Commander)
}

// MockCommander implements Commander for testing. Process() returns nil so
// the platform signal helpers become no-ops instead of signalling a real
// process group on the test host.
type MockCommander struct {
	mock.Mock
	stdoutPipe io.ReadCloser
	stderrPipe io.ReadCloser
}

func NewMockCommander(stdout, stderr io.ReadCloser) *MockCommander {
	return &MockCommander{stdoutPipe: stdout, stderrPipe: stderr}
}

func (m *MockCommander) Start() error {
	return m.Called().Error(0)
}

func (m *MockCommander) Wait() error {
	return m.Called().Error(0)
}

func (m *MockCommander) StdoutPipe() (io.ReadCloser, error) {
	args := m.Called()
	if args.Get(1) != nil {
		return nil, args.Error(1)
	}
	return m.stdoutPipe, nil
}

func (m *MockCommander) StderrPipe() (io.ReadCloser, error) {
	args := m.Called()
	if args.Get(1) != nil {
		return nil, args.Error(1)
	}
	return m.stderrPipe, nil
}

func (m *MockCommander) SetSysProcAttr(attr *syscall.SysProcAttr) {
	m.Called(attr)
}

func (m *MockCommander) Process() *os.Process {
	return nil
}
