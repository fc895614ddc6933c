package memo

import (
	"testing"

	"go.uber.org/goleak"
)

// Every test joins its goroutines; verify nothing leaks past the run.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
