package spz

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing diagnostic messages. The core
// codec never logs — it is a pure function over byte buffers. Neither the
// CLI shim nor the diagnostics helpers take a Logger; the CLI writes its
// error reports to stderr with fmt directly.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs and exits the process on Fatalf.
type DefaultLogger struct{}

// Infof implements Logger.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements Logger.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}
