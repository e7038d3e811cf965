package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

type Config struct {
	Debug bool
	// Fields are attached to every entry, e.g. service name.
	Fields map[string]string
}

func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	for k, v := range cfg.Fields {
		l = l.With(zap.String(k, v))
	}
	return l, nil
}

// Initialize builds the global logger returned by Default.
func Initialize(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	log = l
	return nil
}

func Default() *zap.Logger {
	return log
}

func Named(name string) *zap.Logger {
	return log.Named(name)
}

func Sync() {
	_ = log.Sync()
}
