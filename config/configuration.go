// Package config loads the settings consumed by the urlencoded extractor:
// body size limits and logging.
package config

import (
	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
)

// DefaultFormLimit is the body size limit used when none is configured.
const DefaultFormLimit = 32 * bytesize.KB

// Configuration holds every setting the extractor and logger read.
type Configuration struct {
	Limits LimitsConfig  `koanf:"limits"`
	Log    LoggingConfig `koanf:"log"`
}

// LimitsConfig bounds the size of request bodies.
type LimitsConfig struct {
	Form bytesize.ByteSize `koanf:"form" mapstructure:"form"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  zerolog.Level `koanf:"level"  mapstructure:"level"`
	Format LogFormat     `koanf:"format" mapstructure:"format"`
}

// LogFormat selects between console text and JSON log lines.
type LogFormat int

const (
	LogTextFormat LogFormat = iota
	LogJSONFormat
)

func (f LogFormat) String() string {
	if f == LogJSONFormat {
		return "json"
	}

	return "text"
}

func defaultConfig() Configuration {
	return Configuration{
		Limits: LimitsConfig{Form: DefaultFormLimit},
		Log: LoggingConfig{
			Level:  zerolog.ErrorLevel,
			Format: LogTextFormat,
		},
	}
}

// NewConfiguration returns the defaults overridden by the configuration file, if
// any, and then by ENUMFORM_ prefixed environment variables.
func NewConfiguration(opts ...Option) (Configuration, error) {
	result := defaultConfig()

	err := newLoader(opts...).load(&result)

	return result, err
}
