package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_FieldsAndLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger(&Config{Level: InfoLevel, Output: buf, JSON: true})

	l.WithFields(map[string]interface{}{"component": "triage"}).
		Info("patient registered", "cpf", "111.111.111-11")
	l.Debug("not written")
	l.Error(errors.New("broker down"), "publish failed")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "patient registered", entries[0]["message"])
	assert.Equal(t, "triage", entries[0]["component"])
	assert.Equal(t, "111.111.111-11", entries[0]["cpf"])

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "broker down", entries[1]["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("chatty"))
}
