package logger

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const logFile = "logs/chatguard.log"

// NewLogger builds the process logger: JSON lines to a buffered log file
// plus a console mirror.
func NewLogger() *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0750); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}

	writer, err := NewBufferedFileWriter(logFile, 32*1024)
	if err != nil {
		log.Fatalf("Failed to initialize log writer: %v", err)
	}
	logger.SetOutput(writer)

	logger.AddHook(NewConsoleHook())

	return logger
}

// ConsoleHook mirrors every entry to stdout using the logger's own
// formatter.
type ConsoleHook struct{}

func NewConsoleHook() *ConsoleHook {
	return &ConsoleHook{}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(line)
	return err
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
