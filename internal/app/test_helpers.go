package app

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing, capturing its
// full debug log output.
func SetupAppTest(t *testing.T, config *Config) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	config.LogLevel = "debug"
	testApp := NewApp(logBuffer, config)

	t.Cleanup(func() {
		if os.Getenv("SPGG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
