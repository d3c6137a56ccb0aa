// Package config loads service configuration from defaults, an optional YAML
// file, dotenv files and the process environment, in increasing precedence.
package config
