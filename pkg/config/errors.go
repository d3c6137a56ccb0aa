package config

import "errors"

var (
	ErrNilTarget   = errors.New("config: nil target")
	ErrLoadEnvFile = errors.New("config: failed to load env file")
	ErrLoadFile    = errors.New("config: failed to load config file")
	ErrLoadEnv     = errors.New("config: failed to read environment")
	ErrDecode      = errors.New("config: failed to decode configuration")
)
