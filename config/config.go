// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/pubsub"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/vm"
)

type Config struct {
	LogLevel        string `yaml:"logLevel"`
	LogDisplayLevel string `yaml:"logDisplayLevel"`
	LogDir          string `yaml:"logDir"`

	DataDir         string        `yaml:"dataDir" validate:"required_if=DatabaseBackend pebble"`
	DatabaseBackend string        `yaml:"databaseBackend" validate:"oneof=pebble memdb"`
	Pebble          pebble.Config `yaml:"pebble"`

	GenesisFile string `yaml:"genesisFile" validate:"required"`
	NetworkID   uint32 `yaml:"networkID"`
	ChainID     string `yaml:"chainID"` // cb58, empty keeps the genesis chain id

	HTTPHost        string        `yaml:"httpHost"`
	HTTPPort        uint16        `yaml:"httpPort"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`

	HTTP      server.HTTPConfig   `yaml:"http"`
	WebSocket pubsub.ServerConfig `yaml:"webSocket"`

	VM    vm.Config    `yaml:"vm"`
	Trace trace.Config `yaml:"trace"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:        logging.Info.String(),
		LogDisplayLevel: logging.Info.String(),
		LogDir:          "logs",
		DataDir:         "data",
		DatabaseBackend: storage.PebbleBackend,
		Pebble:          pebble.NewDefaultConfig(),
		GenesisFile:     "genesis.json",
		NetworkID:       1,
		HTTPHost:        "127.0.0.1",
		HTTPPort:        9650,
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 10 * time.Second,
		HTTP:            server.NewDefaultHTTPConfig(),
		WebSocket:       *pubsub.NewDefaultServerConfig(),
		VM:              vm.NewDefaultConfig(),
		Trace: trace.Config{
			Enabled:         false,
			TraceSampleRate: 0.1,
			AppName:         consts.Name,
			Agent:           consts.Name,
			Version:         consts.Version,
		},
	}
}

// Load reads the YAML file at [path] over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	if len(path) > 0 {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(b, c); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	if _, err := logging.ToLevel(c.LogDisplayLevel); err != nil {
		return err
	}
	_, err := c.GetChainID()
	return err
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

func (c *Config) GetLogDisplayLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogDisplayLevel)
}

func (c *Config) GetChainID() (ids.ID, error) {
	if len(c.ChainID) == 0 {
		return ids.Empty, nil
	}
	return ids.FromString(c.ChainID)
}

func (c *Config) GetTraceConfig() *trace.Config { return &c.Trace }
