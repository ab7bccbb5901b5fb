package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerAddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUserID(ctx, "42")
	logger.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"42"`)
	assert.NotContains(t, out, "trace_id")
}

func TestLoggerKeepsContextHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "development").With("component", "store")

	logger.InfoContext(WithUserID(context.Background(), "7"), "saved")

	out := buf.String()
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "user_id=7")
}

func TestUserIDFromEmptyContext(t *testing.T) {
	assert.Empty(t, UserIDFrom(context.Background()))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", ResultLabel(nil))
	assert.Equal(t, "error", ResultLabel(assert.AnError))
}
