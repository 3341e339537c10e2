package app

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// TestModeEnv, when truthy, makes the binaries return before dialing redis,
// the upstream API or the listener.
const TestModeEnv = "BILLDASH_TEST_MODE"

const (
	modeUnknown int32 = iota
	modeLive
	modeTest
)

var runMode atomic.Int32

// InTestMode reports whether startup side effects should be skipped. The
// environment is read on first use.
func InTestMode() bool {
	if runMode.Load() == modeUnknown {
		RefreshTestMode()
	}
	return runMode.Load() == modeTest
}

// RefreshTestMode re-reads the environment after it changes.
func RefreshTestMode() {
	on, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(TestModeEnv)))
	if err == nil && on {
		runMode.Store(modeTest)
		return
	}
	runMode.Store(modeLive)
}
