package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("transfer-api", &buf)

	log.Info("Transfer completed", map[string]interface{}{"attempt_id": "abc-123"})
	log.Warn("Slow settlement", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "transfer-api", entry["service"])
	assert.Equal(t, "Transfer completed", entry["message"])
	assert.Equal(t, "abc-123", entry["attempt_id"])
	assert.NotEmpty(t, entry["timestamp"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Slow settlement", entry["message"])
}

func TestLoggerFieldsDoNotOverrideEachOther(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("transfer-api", &buf)

	log.Error("Settlement failed", map[string]interface{}{
		"error":      "insufficient funds",
		"attempt_id": "abc-123",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "insufficient funds", entry["error"])
	assert.Equal(t, "abc-123", entry["attempt_id"])
}
