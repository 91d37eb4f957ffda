// Package config loads validgen settings from defaults, an optional YAML file,
// optional .env files and VALIDGEN_* environment variables, later sources
// overriding earlier ones.
//
// Example:
//
//	cfg, err := config.Load(config.WithFile("validgen.yaml"), config.WithDotEnv(".env"))
//	if err != nil {
//		// Handle error
//	}
package config
