package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	User  string
	Token string `masq:"secret"`
}

func TestNew_JSONRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "debug")
	require.NoError(t, err)

	logger.Info("configured", slog.Any("creds", credentials{User: "svc", Token: "xoxb-123"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "configured", entry["msg"])
	assert.NotContains(t, buf.String(), "xoxb-123")
	assert.Contains(t, buf.String(), "svc")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "json", "loud")
	assert.Error(t, err)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromFallsBackToDefault(t *testing.T) {
	assert.Same(t, Default(), From(context.Background()))

	var buf bytes.Buffer
	scoped := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := With(context.Background(), scoped)
	assert.Same(t, scoped, From(ctx))
}

func TestErrAttrs(t *testing.T) {
	plain := ErrAttrs(assert.AnError)
	assert.Len(t, plain, 1)

	wrapped := ErrAttrs(goerr.Wrap(assert.AnError, "wrapped", goerr.V("record_id", 7)))
	assert.Len(t, wrapped, 2)
}
