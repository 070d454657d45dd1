package config

import (
	"github.com/flamewatch/flamewatch/internal/constants"
)

// Default returns a config with sensible defaults. Output is left empty;
// the loader fills in the data-directory default once the home dir is known.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Port:          constants.DefaultPort,
			Timeout:       constants.DefaultTimeoutSeconds,
			Rate:          constants.DefaultRate,
			AppModule:     constants.DefaultAppModule,
			Workers:       constants.DefaultWorkers,
			Python:        constants.DefaultPython,
			PySpy:         constants.DefaultPySpyBinary,
			TargetPattern: constants.DefaultTargetPattern,
		},
	}
}
