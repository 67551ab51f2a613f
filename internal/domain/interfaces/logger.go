// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"fmt"
	"io"
	"os"
)

// Logger defines the interface for progress and diagnostic output
type Logger interface {
	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// ConsoleLogger writes human-readable progress lines to a writer
type ConsoleLogger struct {
	Out io.Writer
}

// NewConsoleLogger creates a logger writing to stderr
func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{Out: os.Stderr}
}

// Info logs informational messages
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(msg, fields)
}

// Warn logs warning messages
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log("Warning: "+msg, fields)
}

// Error logs error messages
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log("Error: "+msg, fields)
}

func (c *ConsoleLogger) log(msg string, fields []Field) {
	fmt.Fprint(c.Out, msg)
	for _, f := range fields {
		fmt.Fprintf(c.Out, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(c.Out)
}
