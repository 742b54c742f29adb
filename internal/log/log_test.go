package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestHandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	e := &log.Entry{
		Level:     log.WarnLevel,
		Message:   "warm-up failed",
		Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Fields:    log.Fields{"series": "temperature", "attempt": 2},
	}
	assert.NoError(t, h.HandleLog(e))
	assert.Equal(t, "2024-03-01 12:30:00 W warm-up failed attempt=2 series=temperature\n", buf.String())
}

func TestHandlerWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &log.Logger{Handler: NewHandler(&buf), Level: log.InfoLevel}

	logger.WithError(errors.New("boom")).Error("save failed")
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), " E save failed error=boom\n")
	assert.NotContains(t, buf.String(), "hidden")
}
