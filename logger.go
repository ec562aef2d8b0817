package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger  = newLogger(os.Stdout)
	logFile *lumberjack.Logger

	// silent keeps log lines out of the console pane.
	silent bool
)

const logFileName = "autochat.log"

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.AddHook(consoleHook{})
	return l
}

// setupLogging writes to stdout and to a rotated file under dir/logs.
func setupLogging(dir string, debug bool) {
	out := io.Writer(os.Stdout)
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "could not create log directory: %v\n", err)
	} else {
		logFile = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, logFileName),
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger = newLogger(out)
	setDebugLogging(debug)
}

func setDebugLogging(enabled bool) {
	if enabled {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func closeLogging() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

func logError(format string, v ...interface{}) { logger.Errorf(format, v...) }

func logWarn(format string, v ...interface{}) { logger.Warnf(format, v...) }

func logDebug(format string, v ...interface{}) { logger.Debugf(format, v...) }

// consoleHook mirrors warnings and errors into the console pane.
type consoleHook struct{}

func (consoleHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (consoleHook) Fire(e *logrus.Entry) error {
	if silent {
		return nil
	}
	consoleMessage(consoleLine(e))
	return nil
}

func consoleLine(e *logrus.Entry) string {
	msg := e.Message
	if p, ok := e.Data["plugin"].(string); ok && p != "" && !strings.HasPrefix(msg, "["+p+"]") {
		msg = "[" + p + "] " + msg
	}
	if err, ok := e.Data[logrus.ErrorKey].(error); ok && err != nil {
		msg += ": " + err.Error()
	}
	if e.Level == logrus.WarnLevel {
		msg = "warning: " + msg
	}
	return msg
}
