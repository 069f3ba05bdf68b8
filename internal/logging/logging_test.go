package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		env   Environment
		level string
		want  zapcore.Level
	}{
		{name: "Production default", env: EnvironmentProduction, want: zapcore.InfoLevel},
		{name: "Local default", env: EnvironmentLocal, want: zapcore.DebugLevel},
		{name: "Explicit level", env: EnvironmentDevelopment, level: "warn", want: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env, tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("qa", "")
	assert.Error(t, err)

	_, err = New(EnvironmentProduction, "loud")
	assert.Error(t, err)
}
