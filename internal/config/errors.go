package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrUnknownBackend     = errors.New("unknown backend (want \"sys\" or \"os\")")
	ErrUnknownLogLevel    = errors.New("unknown log level (want debug, info, warn or error)")
)
