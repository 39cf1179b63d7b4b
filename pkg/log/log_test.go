package log

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug", false).GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn", true).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense", false).GetLevel(), "unknown level falls back to info")
}

func TestBadgerLogrusAdapter(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	adapter := NewBadgerLogrusAdapter(logrus.NewEntry(logger))

	assert.NotPanics(t, func() { adapter.Errorf("error %s", "x") })
	assert.NotPanics(t, func() { adapter.Warningf("warning %d", 1) })
	assert.NotPanics(t, func() { adapter.Infof("info") })
	assert.NotPanics(t, func() { adapter.Debugf("debug") })
}
