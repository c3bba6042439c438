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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWith_CarriesFieldsThroughContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "production", "info")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "test", "error") })

	ctx := With(context.Background(), "employee_id", "emp-1")
	From(ctx).Info("scan accepted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scan accepted", line["msg"])
	assert.Equal(t, "emp-1", line["employee_id"])
	assert.Equal(t, "hris-timekeeping", line["app"])
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, From(context.Background()))
}
