// Package mock provides test doubles shared by the package tests
package mock

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is a zap logger recording every entry in memory
type Logger struct {
	*zap.Logger
	logs *observer.ObservedLogs
}

// NewLogger creates a logger recording entries at debug level and above
func NewLogger() *Logger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{
		Logger: zap.New(core),
		logs:   logs,
	}
}

// Entries returns the recorded entries in order
func (l *Logger) Entries() []observer.LoggedEntry {
	return l.logs.All()
}

// Messages returns the messages recorded at level
func (l *Logger) Messages(level zapcore.Level) []string {
	var messages []string
	for _, entry := range l.logs.All() {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}
	return messages
}

// Clear drops the recorded entries
func (l *Logger) Clear() {
	l.logs.TakeAll()
}

// HasEntry checks if a message was logged at a specific level
func (l *Logger) HasEntry(level zapcore.Level, message string) bool {
	return l.logs.FilterLevelExact(level).FilterMessage(message).Len() > 0
}
