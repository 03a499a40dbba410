package logging

import "context"

// NopLogger discards everything. Useful as a default in tests and when a
// component is constructed without an explicit logger.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Debug(context.Context, string, ...any) {}
func (NopLogger) Info(context.Context, string, ...any)  {}
func (NopLogger) Warn(context.Context, string, ...any)  {}
func (NopLogger) Error(context.Context, string, ...any) {}

func (n NopLogger) With(...any) Logger { return n }
