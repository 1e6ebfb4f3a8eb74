package log

import (
	"github.com/sirupsen/logrus"
)

// logrusAdapter implements Logger over a logrus entry; derived loggers
// share the underlying logrus.Logger and its level.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newAdapter(l *logrus.Logger) Logger {
	return &logrusAdapter{entry: logrus.NewEntry(l)}
}

func (l *logrusAdapter) Trace(args ...interface{}) { l.entry.Log(logrus.TraceLevel, args...) }
func (l *logrusAdapter) Debug(args ...interface{}) { l.entry.Log(logrus.DebugLevel, args...) }
func (l *logrusAdapter) Info(args ...interface{})  { l.entry.Log(logrus.InfoLevel, args...) }
func (l *logrusAdapter) Warn(args ...interface{})  { l.entry.Log(logrus.WarnLevel, args...) }
func (l *logrusAdapter) Error(args ...interface{}) { l.entry.Log(logrus.ErrorLevel, args...) }

func (l *logrusAdapter) Tracef(format string, args ...interface{}) {
	l.entry.Logf(logrus.TraceLevel, format, args...)
}
func (l *logrusAdapter) Debugf(format string, args ...interface{}) {
	l.entry.Logf(logrus.DebugLevel, format, args...)
}
func (l *logrusAdapter) Infof(format string, args ...interface{}) {
	l.entry.Logf(logrus.InfoLevel, format, args...)
}
func (l *logrusAdapter) Warnf(format string, args ...interface{}) {
	l.entry.Logf(logrus.WarnLevel, format, args...)
}
func (l *logrusAdapter) Errorf(format string, args ...interface{}) {
	l.entry.Logf(logrus.ErrorLevel, format, args...)
}

func (l *logrusAdapter) WithField(field string, value interface{}) Logger {
	return l.derive(l.entry.WithField(field, value))
}

func (l *logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return l.derive(l.entry.WithFields(fields))
}

// WithError drops nil errors so call sites can pass a result through
// without branching.
func (l *logrusAdapter) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.derive(l.entry.WithError(err))
}

func (l *logrusAdapter) IsTraceEnabled() bool { return l.enabled(logrus.TraceLevel) }
func (l *logrusAdapter) IsDebugEnabled() bool { return l.enabled(logrus.DebugLevel) }

func (l *logrusAdapter) derive(entry *logrus.Entry) Logger {
	return &logrusAdapter{entry: entry}
}

func (l *logrusAdapter) enabled(level logrus.Level) bool {
	return l.entry.Logger.IsLevelEnabled(level)
}
