package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Development output is coloured console
// text; otherwise JSON lines.
func New(level zapcore.Level, development bool) (*zap.Logger, error) {
	var lcf zap.Config
	if development {
		lcf = zap.NewDevelopmentConfig()
		lcf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		lcf.DisableCaller = true
	} else {
		lcf = zap.NewProductionConfig()
	}
	lcf.Level.SetLevel(level)
	return lcf.Build()
}
