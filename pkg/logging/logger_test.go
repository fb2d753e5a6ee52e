package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelInfo,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Info("hello", F("count", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test-service", entry["service_name"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelWarn,
		JSONFormat: true,
		Output:     &buf,
	})

	log.Debug("dropped")
	log.Info("dropped too")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		JSONFormat: true,
		Output:     &buf,
	})

	child := log.With(F("component", "session"))
	child.Info("prepared")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session", entry["component"])
}

func TestLogger_ErrField(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		JSONFormat: true,
		Output:     &buf,
	})

	log.Error("cycle failed", Err(errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      Level("bogus"),
		JSONFormat: true,
		Output:     &buf,
	})

	log.Debug("dropped")
	assert.Zero(t, buf.Len())

	log.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and With must stay a nop.
	log.With(F("k", "v")).Info("ignored")
}
