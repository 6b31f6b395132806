package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	log, closeFn, err := New(Config{})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
		err   bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"INFO", logrus.InfoLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, _, err := New(Config{Level: tt.level})
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.WithField("component", "tree").Info("scanned")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scanned", entry["msg"])
	assert.Equal(t, "tree", entry["component"])
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pj.log")
	log, closeFn, err := New(Config{File: path})
	require.NoError(t, err)

	log.Warn("watch disabled")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "watch disabled")
}

func TestNewBadFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	assert.NotNil(t, log)
}
