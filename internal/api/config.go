package api

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/benchbus/benchbus/internal/config"
	"github.com/benchbus/benchbus/internal/instrument"
)

// InstrumentConfig describes one configured instrument: its model type and
// where to find it on the bus.
type InstrumentConfig struct {
	Type        string        `mapstructure:"type"`
	Resource    string        `mapstructure:"resource"`
	GPIBPort    string        `mapstructure:"gpib-port"`
	GPIBAddress int           `mapstructure:"gpib-address"`
	SerialPort  string        `mapstructure:"serial-port"`
	TCPAddress  string        `mapstructure:"tcp-address"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (c InstrumentConfig) connectOptions() instrument.ConnectOptions {
	return instrument.ConnectOptions{
		Resource:    c.Resource,
		GPIBPort:    c.GPIBPort,
		GPIBAddress: c.GPIBAddress,
		SerialPort:  c.SerialPort,
		TCPAddress:  c.TCPAddress,
		Timeout:     c.Timeout,
	}
}

// Config holds the configuration for the API server.
type Config struct {
	ListenAddress string                      `mapstructure:"listen-address"`
	ListenPort    int                         `mapstructure:"listen-port"`
	ConfigFile    string                      `mapstructure:"config-file"`
	Instruments   map[string]InstrumentConfig `mapstructure:"instruments"`
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		ListenPort: 8080,
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config-file", c.ConfigFile, "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for http server")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for http server")
}

// LoadConfigWithFlagSet loads the configuration with standard precedence
// using the given flag set.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(map[string]any{
		"listen-address": c.ListenAddress,
		"listen-port":    c.ListenPort,
	})
	return loader.LoadWithFlagSet(c, fs)
}

// GetListenAddress implements httpserver.Config.
func (c *Config) GetListenAddress() string { return c.ListenAddress }

// GetListenPort implements httpserver.Config.
func (c *Config) GetListenPort() int { return c.ListenPort }
