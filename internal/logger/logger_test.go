package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONIncludesContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, Options{Level: "info", JSON: true})

	ctx := WithFields(context.Background(), Fields{RequestID: "req-1"})
	ctx = WithFields(ctx, Fields{UserID: "65a1f0c2e4b0a1b2c3d4e5f6"})
	log.InfoContext(ctx, "client created", slog.String("client_id", "c1"))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "client created", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", record["user_id"])
	assert.Equal(t, "c1", record["client_id"])
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, Options{Level: "warn"})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.With("component", "seeder").Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=seeder")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFieldsFrom_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Fields{}, FieldsFrom(context.Background()))
}
