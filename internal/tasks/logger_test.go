package tasks

import (
	"bytes"
	"log/slog"
	"testing"

	"rentshare-backend/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestQueueLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, slog.LevelInfo)

	l := NewLogger()
	l.Debug("hidden")
	l.Warn("lease ", "expired")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "lease expired")
	assert.Contains(t, out, "component=asynq")
}
