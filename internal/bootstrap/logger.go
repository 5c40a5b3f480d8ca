package bootstrap

import (
	"github.com/turtacn/followup-compliance/internal/config"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
)

// NewLogger builds the process logger from the log section and installs it
// as the default. A non-empty levelOverride wins over the configured level.
func NewLogger(cfg config.LogConfig, levelOverride string) (logging.Logger, error) {
	lc := logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
		Development: cfg.Development,
	}
	if levelOverride != "" {
		lc.Level = levelOverride
	}
	logger, err := logging.NewLogger(lc)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}
