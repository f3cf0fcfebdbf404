package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "socialfeed"

var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Инициализация по умолчанию нужна тестам, где main не вызывается
func init() {
	InitLogger("info", "text")
}

// InitLogger настраивает глобальный логгер
func InitLogger(level string, format string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithFields(logrus.Fields{"service": serviceName})
}
