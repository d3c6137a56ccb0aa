package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Option configures Load.
type Option func(*options)

type options struct {
	envFiles []string
	file     string
}

// WithEnvFiles loads dotenv files before reading the environment.
// Variables already set in the process environment win. Missing files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, paths...)
	}
}

// WithFile reads a YAML file below the environment layer.
// A missing file is skipped.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// Load fills dst, a pointer to a struct with koanf tags. Values already in dst
// act as defaults; the YAML file overrides them and environment variables
// override both.
//
// Environment keys drop prefix, are lowercased, and use "__" for nesting:
// with prefix "AUTH_", AUTH_REDIS__POOL_SIZE sets redis.pool_size.
//
//	cfg := defaultConfig()
//	if err := config.Load("AUTH_", &cfg, config.WithEnvFiles(".env")); err != nil {
//	    return err
//	}
func Load(prefix string, dst any, opts ...Option) error {
	if dst == nil {
		return ErrNilTarget
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	for _, path := range o.envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadEnvFile, err)
		}
	}

	k := koanf.New(".")

	if o.file != "" {
		if err := k.Load(file.Provider(o.file), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadFile, err)
		}
	}

	if err := k.Load(env.Provider(prefix, ".", envKey(prefix)), nil); err != nil {
		return errors.Join(ErrLoadEnv, err)
	}

	if err := k.Unmarshal("", dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

func envKey(prefix string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	}
}
