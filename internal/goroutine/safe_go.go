package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Logger is the minimal logging surface needed for panic reports.
type Logger interface {
	Errorf(format string, args ...interface{})
}

var log Logger = logrus.StandardLogger()

// SetLogger routes panic reports to the application logger.
func SetLogger(l Logger) {
	log = l
}

// SafeGo starts fn in a goroutine; a panic is logged instead of crashing
// the process.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic in goroutine: %v\nstack trace:\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
