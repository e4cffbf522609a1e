// Package benchctl implements the benchctl command line client for the
// benchbus API server.
package benchctl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"

	"github.com/benchbus/benchbus/internal/config"
)

const defaultServerURL = "http://localhost:8080"

// Config holds the benchctl configuration.
type Config struct {
	ServerURL          string `mapstructure:"server-url"`
	ConfigFile         string `mapstructure:"config-file"`
	explicitConfigFile bool
}

func getDefaultServerURL() string {
	if url := os.Getenv("BENCHBUS_SERVER_URL"); url != "" {
		return url
	}
	return defaultServerURL
}

func getDefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "benchbus", "benchbus.toml")
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL: getDefaultServerURL(),
	}
}

// AddFlags adds command-line flags for all configuration options.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", getDefaultConfigFile(), "Config file to use")
	fs.StringVar(&c.ServerURL, "server-url", c.ServerURL, "API server URL")
}

// LoadConfigWithFlagSet loads configuration with standard precedence. The
// default config file is optional; an explicitly named one must exist.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	c.explicitConfigFile = c.ConfigFile != getDefaultConfigFile()

	if !c.explicitConfigFile {
		if _, err := os.Stat(c.ConfigFile); os.IsNotExist(err) {
			c.ConfigFile = ""
		}
	} else if _, err := os.Stat(c.ConfigFile); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", c.ConfigFile)
	}

	loader := config.NewLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(map[string]any{
		"server-url": getDefaultServerURL(),
	})

	return loader.LoadWithFlagSet(c, fs)
}
