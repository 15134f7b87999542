package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)
	t.Cleanup(func() { Initialize("info", "text") })

	EnterMethod("bookingService.CancelBooking", "bookingID", "b-1")
	ExternalServiceResult("stripe", "CreateRefund", errors.New("card_declined"), "bookingID", "b-1")
	DatabaseResult("UPDATE", 0, nil)

	out := buf.String()
	assert.Contains(t, out, "method=bookingService.CancelBooking")
	assert.Contains(t, out, "event=enter")
	assert.Contains(t, out, "error=card_declined")
	assert.Contains(t, out, "service=stripe")
	assert.Contains(t, out, "rows_affected=0")
}

func TestInitializeWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	InitializeWithFile("warn", "json", path)
	t.Cleanup(func() { Initialize("info", "text") })

	Info("dropped below level")
	Warn("settlement retry", "bookingID", "b-2")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"settlement retry"`)
	assert.NotContains(t, string(data), "dropped below level")
}
