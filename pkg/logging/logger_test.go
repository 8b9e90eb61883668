package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/flocknet/flock/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		level  zapcore.Level
	}{
		{
			name:  "json info",
			cfg:   config.LoggingConfig{Level: "INFO", Format: "json"},
			level: zapcore.InfoLevel,
		},
		{
			name:  "text debug",
			cfg:   config.LoggingConfig{Level: "DEBUG", Format: "text"},
			level: zapcore.DebugLevel,
		},
		{
			name:  "invalid level falls back to info",
			cfg:   config.LoggingConfig{Level: "bogus", Format: "json"},
			level: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("InitLogger() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("InitLogger() left Logger nil")
			}
			if !Logger.Core().Enabled(tt.level) {
				t.Errorf("logger should be enabled at %s", tt.level)
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger() should never return nil")
	}
}

func TestWithComponent(t *testing.T) {
	l := WithComponent("graph")
	if l == nil {
		t.Fatal("WithComponent() returned nil")
	}
}
