package csp

import (
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
)

var packageLogger atomic.Pointer[zap.Logger]

func init() {
	packageLogger.Store(zap.NewNop())
}

// SetLogger configures the package-level logger used to report panics
// recovered from user-supplied cleanup callbacks. Cleanup callbacks must
// never throw; when one does, the panic is recovered, logged here, and
// the caller proceeds unaffected. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	packageLogger.Store(l)
}

func currentLogger() *zap.Logger {
	return packageLogger.Load()
}

// safeCleanup runs cleanup, recovering and logging any panic instead of
// letting it propagate. logger may be nil, in which case the package
// logger set via SetLogger is used.
func safeCleanup(logger *zap.Logger, component string, cleanup func()) {
	if cleanup == nil {
		return
	}
	if logger == nil {
		logger = currentLogger()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("csp: recovered panic in cleanup callback",
				zap.String("component", component),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	cleanup()
}
