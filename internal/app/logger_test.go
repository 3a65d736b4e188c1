package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("prod", &buf)

	log.Debug("hidden")
	log.Info("room.created", "code", "abcd")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "room.created", line["msg"])
	assert.Equal(t, "abcd", line["code"])
}

func TestNewLoggerDevIsVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("dev", &buf)

	log.Debug("session.frame", "cmd", "join")

	assert.Contains(t, buf.String(), "session.frame")
	assert.Contains(t, buf.String(), "cmd=join")
}
