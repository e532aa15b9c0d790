package goroutine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines chan string
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.lines <- fmt.Sprintf(format, args...)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	rec := &recordingLogger{lines: make(chan string, 1)}
	prev := log
	SetLogger(rec)
	defer SetLogger(prev)

	SafeGo(func() {
		panic("boom")
	})

	select {
	case line := <-rec.lines:
		assert.Contains(t, line, "boom")
		assert.Contains(t, line, "stack trace")
	case <-time.After(time.Second):
		t.Fatal("panic was never logged")
	}
}

func TestSafeGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})
	SafeGo(func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("function never ran")
	}
}
