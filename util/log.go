package util

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	jww "github.com/spf13/jwalterweatherman"
)

var (
	loggers = map[string]*Logger{}
	levels  = map[string]jww.Threshold{}

	// OutThreshold is the default console log level
	OutThreshold = jww.LevelError

	// LogThreshold is the default log file level
	LogThreshold = jww.LevelWarn
)

// Logger wraps a jww notepad to avoid leaking implementation detail
type Logger struct {
	*jww.Notepad
	redactions []string
}

// NewLogger creates a logger with the given log area and adds it to the registry
func NewLogger(area string) *Logger {
	if logger, ok := loggers[area]; ok {
		return logger
	}

	padding := 6
	notepad := jww.NewNotepad(level(area), LogThreshold, os.Stdout, ioutil.Discard, area, log.Ldate|log.Ltime)

	if len(area) < padding {
		area = area + strings.Repeat(" ", padding-len(area))
		notepad.SetPrefix(area)
	}

	logger := &Logger{Notepad: notepad}
	loggers[area] = logger

	return logger
}

// Redact returns the logger and registers strings for masking in log output
func (l *Logger) Redact(redactions ...string) *Logger {
	for _, s := range redactions {
		if s != "" {
			l.redactions = append(l.redactions, s)
		}
	}
	return l
}

// Redacted returns the message with all registered secrets masked
func (l *Logger) Redacted(msg string) string {
	for _, s := range l.redactions {
		msg = strings.ReplaceAll(msg, s, "***")
	}
	return msg
}

// Loggers invokes callback for each configured logger
func Loggers(cb func(string, *Logger)) {
	for name, logger := range loggers {
		cb(name, logger)
	}
}

// LogLevel sets log level for all loggers
func LogLevel(defaultLevel string, areaLevels map[string]string) {
	OutThreshold = LogLevelToThreshold(defaultLevel)
	LogThreshold = OutThreshold

	levels = make(map[string]jww.Threshold)
	for area, level := range areaLevels {
		levels[strings.ToLower(area)] = LogLevelToThreshold(level)
	}

	Loggers(func(name string, logger *Logger) {
		logger.SetStdoutThreshold(level(name))
	})
}

// LogLevelToThreshold converts log level string to a jww Threshold
func LogLevelToThreshold(level string) jww.Threshold {
	switch strings.ToUpper(level) {
	case "FATAL":
		return jww.LevelFatal
	case "ERROR":
		return jww.LevelError
	case "WARN":
		return jww.LevelWarn
	case "INFO":
		return jww.LevelInfo
	case "DEBUG":
		return jww.LevelDebug
	case "TRACE":
		return jww.LevelTrace
	default:
		panic(fmt.Sprintf("invalid log level %s", level))
	}
}

func level(area string) jww.Threshold {
	level, ok := levels[strings.ToLower(area)]
	if !ok {
		level = OutThreshold
	}
	return level
}
