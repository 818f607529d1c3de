package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoOutputsIsNop(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Options{Level: "info"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Options{Level: "loud", Console: true})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNew_LevelParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			logger, _, err := New(Options{Level: tt.level, Console: true})
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNew_FileOutputRedacts(t *testing.T) {
	t.Parallel()

	logFile := filepath.Join(t.TempDir(), "logs", "hive.log")
	logger, closer, err := New(Options{
		Level:      "debug",
		File:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Msg("dispatch with sk-ant-api03-filetest42")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile) //nolint:gosec // Test-controlled path
	require.NoError(t, err)
	assert.Contains(t, string(data), RedactedValue)
	assert.NotContains(t, string(data), "sk-ant-api03-filetest42")
}

func TestNew_CreatesLogDirectory(t *testing.T) {
	t.Parallel()

	logFile := filepath.Join(t.TempDir(), "deep", "nested", "hive.log")
	_, closer, err := New(Options{Level: "info", File: logFile})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	_, err = os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
}
