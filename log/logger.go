// Package log wraps logrus with key/value style logging functions.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

const (
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
	errorKey   = "LOG_ERROR"
)

var (
	logger = logrus.New()

	// JSONFormat json format
	JSONFormat bool
	// ColorFormat color format
	ColorFormat bool
)

func init() {
	SetLogger(4, false, true)
}

// SetLogger set log level, json format, color format
func SetLogger(logLevel uint32, jsonFormat, colorFormat bool) {
	logger.SetLevel(convertLevel(logLevel))
	JSONFormat = jsonFormat
	ColorFormat = colorFormat
	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timeFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timeFormat,
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
		})
	}
}

// SetLogFile set log file with rotation
// rotation and maxAge are in hours, 0 means no rotation
func SetLogFile(logFile string, rotation, maxAge uint64) {
	if logFile == "" {
		return
	}
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		logger.Fatal("create log dir failed: ", err)
	}
	if rotation == 0 {
		file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			logger.Fatal("open log file failed: ", err)
		}
		logger.SetOutput(file)
		return
	}
	if maxAge == 0 {
		maxAge = 7 * 24
	}
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(time.Duration(rotation)*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(maxAge)*time.Hour),
	)
	if err != nil {
		logger.Fatal("create rotate logs failed: ", err)
	}
	logger.SetOutput(writer)
}

func convertLevel(level uint32) logrus.Level {
	if level > uint32(logrus.TraceLevel) {
		return logrus.TraceLevel
	}
	return logrus.Level(level)
}

// GetLogger get underlying logger
func GetLogger() *logrus.Logger {
	return logger
}

// WithFields convert key/value pairs to logrus entry
func WithFields(ctx ...interface{}) *logrus.Entry {
	fields := make(logrus.Fields, (len(ctx)+1)/2)
	for i := 0; i < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", ctx[i])
		}
		if i+1 < len(ctx) {
			fields[key] = ctx[i+1]
		} else {
			fields[errorKey] = "missing value of key " + key
		}
	}
	return logger.WithFields(fields)
}

// Trace trace
func Trace(msg string, ctx ...interface{}) {
	if logger.IsLevelEnabled(logrus.TraceLevel) {
		WithFields(ctx...).Trace(msg)
	}
}

// Debug debug
func Debug(msg string, ctx ...interface{}) {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		WithFields(ctx...).Debug(msg)
	}
}

// Info info
func Info(msg string, ctx ...interface{}) {
	if logger.IsLevelEnabled(logrus.InfoLevel) {
		WithFields(ctx...).Info(msg)
	}
}

// Warn warn
func Warn(msg string, ctx ...interface{}) {
	if logger.IsLevelEnabled(logrus.WarnLevel) {
		WithFields(ctx...).Warn(msg)
	}
}

// Error error
func Error(msg string, ctx ...interface{}) {
	if logger.IsLevelEnabled(logrus.ErrorLevel) {
		WithFields(ctx...).Error(msg)
	}
}

// Fatal fatal
func Fatal(msg string, ctx ...interface{}) {
	WithFields(ctx...).Fatal(msg)
}

// Fatalf fatalf
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Infof infof
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf warnf
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Errorf errorf
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Printf printf
func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Println println
func Println(args ...interface{}) {
	logger.Println(args...)
}

// LogFunc log function with key/value pairs
type LogFunc func(msg string, ctx ...interface{})

// GetLogFuncOr get log func on condition
func GetLogFuncOr(condition bool, a, b LogFunc) LogFunc {
	if condition {
		return a
	}
	return b
}
