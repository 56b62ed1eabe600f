package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"vellum/pkg/config"
)

func TestL_NopBeforeInitialize(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	l := L()
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestInitialize_JSON(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LogConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))
	L().Info("dropped")
	L().Named("css").Warn("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "vellum.css", entry["logger"])
}

func TestOr(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	assert.NotNil(t, Or(nil))
}
