package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := NewMavenHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h.showTimestamps = false
	return slog.New(h), &buf
}

func TestMavenHandler_Format(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Info("posted payment", "tenant", "gandalf", "amount", "100.00")

	assert.Equal(t, "[INFO] posted payment tenant=gandalf amount=100.00\n", buf.String())
}

func TestMavenHandler_SystemBracket(t *testing.T) {
	logger, buf := newTestLogger()

	logger.With("system", "reconcile").Warn("label move failed", "thread_id", "t-1")

	out := buf.String()
	assert.Contains(t, out, "[WARN] [reconcile]")
	// Hoisted into the bracket, not repeated as an attr.
	assert.NotContains(t, out, "system=")
}

func TestMavenHandler_QuotesAmbiguousValues(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Error("run failed", "error", "no such ledger: Gandalf ledger")

	assert.Contains(t, buf.String(), `error="no such ledger: Gandalf ledger"`)
}

func TestMavenHandler_GroupPrefixesKeys(t *testing.T) {
	logger, buf := newTestLogger()

	logger.WithGroup("run").Info("done", "posted", 2)

	assert.Contains(t, buf.String(), "run.posted=2")
}

func TestMavenHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewMavenHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(h)

	logger.Debug("hidden")
	logger.Info("hidden too")
	require.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}
