package logger

import (
	"os"
	"strings"

	"github.com/labstack/gommon/log"

	"assetbazaar/pkg/errors"
)

const header = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`

var std = newLogger(os.Getenv("LOG_LEVEL"))

func newLogger(level string) *log.Logger {
	l := log.New("assetbazaar")
	l.SetHeader(header)
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Configure resets the level; debug output is only honoured in development.
func Configure(level, environment string) {
	lvl := parseLevel(level)
	if lvl == log.DEBUG && environment != "development" {
		lvl = log.INFO
	}
	std.SetLevel(lvl)
}

// Logger exposes the shared instance so Echo can log through it.
func Logger() *log.Logger {
	return std
}

func Info(format string, v ...interface{}) {
	std.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	std.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	std.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	std.Warnf(format, v...)
}

// Fatal logs and exits the process.
func Fatal(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}

type bestEffort struct{}

func (bestEffort) Report(op string, err error) {
	Warn("best-effort %s failed: %v", op, err)
}

// BestEffort returns the reporter for failures that are logged and never shown to the user.
func BestEffort() errors.Reporter {
	return bestEffort{}
}
