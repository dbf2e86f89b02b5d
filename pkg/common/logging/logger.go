/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides module scoped loggers backed by zap.
//
//  Basic Flow:
//  1) Optionally initialize the backend with Initialize
//  2) Create new logger for specific module
//  3) Call log info
package logging

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a module logger. The zap instance is resolved lazily so that
// package level loggers pick up a backend installed later with Initialize.
type Logger struct {
	instance *zap.SugaredLogger // access only via Logger.logger()
	module   string
	once     sync.Once
}

// Level defines all available log levels for log messages.
type Level int

// Log levels.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

const loggerModule = "coordinator/common"

var (
	backend     *zap.Logger
	backendOnce sync.Once
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// NewLogger creates and returns a Logger object based on the module name.
func NewLogger(module string) *Logger {
	return &Logger{module: module}
}

func defaultBackend() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func zapBackend() *zap.Logger {
	backendOnce.Do(func() {
		backend = defaultBackend()
		backend.Named(loggerModule).Debug("Default logger initialized (call logging.Initialize to use a custom zap logger)")
	})
	return backend
}

// Initialize sets the zap logger which takes over logging operations.
// It must be called before the first log output. A later call leaves the
// active backend in place, logs a warning through it and returns false.
func Initialize(l *zap.Logger) bool {
	installed := false
	backendOnce.Do(func() {
		backend = l.WithOptions(zap.AddCallerSkip(1))
		backend.Named(loggerModule).Debug("Logger backend initialized")
		installed = true
	})
	if !installed {
		zapBackend().Named(loggerModule).Warn("logging.Initialize called after the logger backend was in use, keeping the active backend")
	}
	return installed
}

// SetLevel sets the level of the default backend.
func SetLevel(level Level) {
	atomicLevel.SetLevel(level.zapLevel())
}

// GetLevel returns the level of the default backend.
func GetLevel() Level {
	return fromZapLevel(atomicLevel.Level())
}

// IsEnabledFor reports whether the given level is enabled.
func IsEnabledFor(level Level) bool {
	return atomicLevel.Enabled(level.zapLevel())
}

// LogLevel returns the log level from a string representation.
func LogLevel(level string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "CRITICAL", "FATAL":
		return CRITICAL, nil
	case "ERROR":
		return ERROR, nil
	case "WARNING", "WARN":
		return WARNING, nil
	case "INFO", "":
		return INFO, nil
	case "DEBUG":
		return DEBUG, nil
	}
	return INFO, errors.Errorf("invalid log level [%s]", level)
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case CRITICAL:
		return zapcore.FatalLevel
	case ERROR:
		return zapcore.ErrorLevel
	case WARNING:
		return zapcore.WarnLevel
	case DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(l zapcore.Level) Level {
	switch {
	case l >= zapcore.FatalLevel:
		return CRITICAL
	case l == zapcore.ErrorLevel:
		return ERROR
	case l == zapcore.WarnLevel:
		return WARNING
	case l == zapcore.DebugLevel:
		return DEBUG
	default:
		return INFO
	}
}

// String returns the level name
func (l Level) String() string {
	switch l {
	case CRITICAL:
		return "CRITICAL"
	case ERROR:
		return "ERROR"
	case WARNING:
		return "WARNING"
	case DEBUG:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Module returns the module name of the logger
func (l *Logger) Module() string {
	return l.module
}

// With returns a child logger carrying the given key/value pairs on every entry.
func (l *Logger) With(kvPairs ...interface{}) *Logger {
	child := &Logger{module: l.module, instance: l.logger().With(kvPairs...)}
	child.once.Do(func() {})
	return child
}

//Fatalf calls Fatalf function of underlying logger
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger().Fatalf(format, args...)
}

//Panicf calls Panicf function of underlying logger
func (l *Logger) Panicf(format string, args ...interface{}) {
	l.logger().Panicf(format, args...)
}

//Debug calls Debug function of underlying logger
func (l *Logger) Debug(args ...interface{}) {
	l.logger().Debug(args...)
}

//Debugf calls Debugf function of underlying logger
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger().Debugf(format, args...)
}

//Info calls Info function of underlying logger
func (l *Logger) Info(args ...interface{}) {
	l.logger().Info(args...)
}

//Infof calls Infof function of underlying logger
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger().Infof(format, args...)
}

//Warn calls Warn function of underlying logger
func (l *Logger) Warn(args ...interface{}) {
	l.logger().Warn(args...)
}

//Warnf calls Warnf function of underlying logger
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger().Warnf(format, args...)
}

//Error calls Error function of underlying logger
func (l *Logger) Error(args ...interface{}) {
	l.logger().Error(args...)
}

//Errorf calls Errorf function of underlying logger
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger().Errorf(format, args...)
}

func (l *Logger) logger() *zap.SugaredLogger {
	l.once.Do(func() {
		l.instance = zapBackend().Named(l.module).Sugar()
	})
	return l.instance
}
