package commands

import (
	"github.com/coapsec/oscore/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	return cfg.InitLogging()
}
