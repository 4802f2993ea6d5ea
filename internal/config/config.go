// Package config holds the server's startup configuration.
package config

import (
	"flag"
	"fmt"

	"anchor-editor-server/internal/filesystem"
)

// Config holds all configurable values for the server.
type Config struct {
	WorkingDirectory    string
	Transport           string
	Port                int
	MaxFileSizeMB       int
	OperationTimeoutSec int
	Debug               bool
}

// ParseFlags parses the command-line flags and populates the Config struct.
func ParseFlags() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.WorkingDirectory, "dir", "", "Path to the working directory (required)")
	flag.StringVar(&cfg.Transport, "transport", "stdio", "Transport protocol (http or stdio)")
	flag.IntVar(&cfg.Port, "port", 8080, "Port for HTTP transport")
	flag.IntVar(&cfg.MaxFileSizeMB, "max-file-size", 10, "Maximum file size in MB")
	flag.IntVar(&cfg.OperationTimeoutSec, "timeout", 30, "Operation timeout in seconds")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return cfg
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.WorkingDirectory == "" {
		return fmt.Errorf("working directory is required")
	}
	if err := filesystem.CheckDirectoryIsWritable(c.WorkingDirectory); err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("transport must be 'http' or 'stdio'")
	}
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535")
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > 100 {
		return fmt.Errorf("max file size must be between 1 and 100 MB")
	}
	if c.OperationTimeoutSec < 5 || c.OperationTimeoutSec > 300 {
		return fmt.Errorf("operation timeout must be between 5 and 300 seconds")
	}
	return nil
}
