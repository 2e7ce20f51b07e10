package app

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

// SafeBuffer guards a bytes.Buffer with a mutex so the app logger can
// write from several goroutines while tests read the captured output.
type SafeBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *SafeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *SafeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// SetupAppTest creates a new app instance for system testing. Mode input
// comes from the provided string; mode output and logs are captured in
// separate buffers.
func SetupAppTest(t *testing.T, appConfig *Config, input string) (*App, *bytes.Buffer, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	outBuffer := &bytes.Buffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(strings.NewReader(input), outBuffer, logBuffer, appConfig)

	t.Cleanup(func() {
		if os.Getenv("PLANWEAVE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
