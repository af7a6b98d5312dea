package logger

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	loggingFilePath string
)

// Init configures the global logrus logger. level is cumulative:
// 0 = info, 1 = debug, 2+ = trace. An empty logFilePath disables the
// activity log file.
func Init(level int, logFilePath string) error {
	loggingFilePath = logFilePath

	switch {
	case level >= 2:
		logrus.SetLevel(logrus.TraceLevel)
	case level == 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})

	if logFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    5,
			MaxBackups: 2,
			MaxAge:     14,
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
	} else {
		logrus.SetOutput(os.Stderr)
	}

	return nil
}

// GetLogger returns a logger entry carrying the given prefix.
func GetLogger(prefix string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"prefix": prefix})
}
