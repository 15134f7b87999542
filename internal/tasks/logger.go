package tasks

import (
	"fmt"
	"os"

	"rentshare-backend/internal/logger"

	"github.com/hibiken/asynq"
)

// queueLogger routes asynq's own log lines through the application logger.
type queueLogger struct{}

// NewLogger returns an asynq.Logger backed by the application logger.
func NewLogger() asynq.Logger {
	return queueLogger{}
}

func (queueLogger) Debug(args ...interface{}) {
	logger.Debug(fmt.Sprint(args...), "component", "asynq")
}

func (queueLogger) Info(args ...interface{}) {
	logger.Info(fmt.Sprint(args...), "component", "asynq")
}

func (queueLogger) Warn(args ...interface{}) {
	logger.Warn(fmt.Sprint(args...), "component", "asynq")
}

func (queueLogger) Error(args ...interface{}) {
	logger.Error(fmt.Sprint(args...), "component", "asynq")
}

func (queueLogger) Fatal(args ...interface{}) {
	logger.Error(fmt.Sprint(args...), "component", "asynq")
	os.Exit(1)
}
