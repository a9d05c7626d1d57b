package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDropsTime(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).Info("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "time")
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, Options{Verbose: true, Text: true}).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	assert.Equal(t, discardLogger, FromContextOrDiscard(context.Background()))

	ctx := NewContext(context.Background(), logger)
	assert.Equal(t, logger, FromContextOrDiscard(ctx))

	logr.FromContextOrDiscard(ctx).Info("via logr")
	assert.Contains(t, buf.String(), "via logr")
}
