package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/logger"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T, settings domain.LogSettings) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	lg.Configure(settings)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t, domain.LogSettings{})
	lg.Info("some message")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Debug(t *testing.T) {
	t.Run("hidden by default", func(t *testing.T) {
		lg, buf := newTestLogger(t, domain.LogSettings{})
		lg.Debug("manifest composer.lock")
		assert.Empty(t, buf.String())
	})

	t.Run("shown when enabled", func(t *testing.T) {
		lg, buf := newTestLogger(t, domain.LogSettings{Debug: true})
		lg.Debug("manifest composer.lock")
		assert.Equal(t, "debug: manifest composer.lock\n", buf.String())
	})
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t, domain.LogSettings{})
	lg.Warn("state not written")
	assert.Equal(t, "! state not written\n", buf.String())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        errors.New("simple failure"),
			goldenName: "error_standard",
		},
		{
			name: "zerr chain with metadata",
			err: zerr.With(
				zerr.Wrap(errors.New("exit status 2"), "failed to query cache directory"),
				"dir", "/src",
			),
			goldenName: "error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t, domain.LogSettings{})
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t, domain.LogSettings{})
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_Group(t *testing.T) {
	t.Run("runner workflow commands", func(t *testing.T) {
		lg, buf := newTestLogger(t, domain.LogSettings{Groups: true})

		end := lg.Group("Restoring composer cache")
		lg.Info("Cache hit")
		end()

		g := goldie.New(t)
		g.Assert(t, "group_runner", buf.Bytes())
	})

	t.Run("heading outside a runner", func(t *testing.T) {
		lg, buf := newTestLogger(t, domain.LogSettings{})

		end := lg.Group("Restoring composer cache")
		lg.Info("Cache hit")
		end()

		g := goldie.New(t)
		g.Assert(t, "group_heading", buf.Bytes())
	})
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t, domain.LogSettings{Format: domain.LogFormatJSON})

	lg.Error(zerr.Wrap(errors.New("boom"), "save failed"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	errRecord, ok := record["error"].(map[string]any)
	require.True(t, ok, "zerr errors are logged as a group")
	assert.Equal(t, "save failed", errRecord["msg"])
	assert.Equal(t, "boom", errRecord["cause"])
}

func TestLogger_JSON_GroupIsHeading(t *testing.T) {
	lg, buf := newTestLogger(t, domain.LogSettings{Format: domain.LogFormatJSON, Groups: true})

	end := lg.Group("Saving composer cache")
	end()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Saving composer cache", record["msg"])
	assert.Equal(t, true, record["heading"])
}
