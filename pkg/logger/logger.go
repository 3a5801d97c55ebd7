package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates the shared logger instance used across the service
func New() *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "time",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	})

	log.SetOutput(os.Stdout)

	// Set level based on environment
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// WithComponent returns an entry tagged with the originating component
func WithComponent(log *logrus.Logger, component string) *logrus.Entry {
	return log.WithField("component", component)
}
