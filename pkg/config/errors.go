package config

import "errors"

// Package-specific errors
var (
	// ErrReadingFile is returned when the YAML configuration file cannot be read or decoded
	ErrReadingFile = errors.New("failed to read config file")

	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when the merged configuration fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)
