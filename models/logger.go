package models

// Logger is the logging surface every component receives.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...any)
	Info(msg string)
	Infof(format string, args ...any)
	Warn(msg string)
	Warnf(format string, args ...any)
	Error(msg string)
	Errorf(format string, args ...any)

	// With returns a child logger which attaches key=value to every entry.
	With(key string, value any) Logger
}
