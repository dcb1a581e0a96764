package broker

import (
	"errors"
	"time"

	"gbus/pkg/network"
)

var ErrEmptyAddress = errors.New("broker address is empty")

type Config struct {
	Address             string `json:"address" yaml:"address"`
	PoolMaxSize         int    `json:"poolMaxSize" yaml:"poolMaxSize"`
	PoolLifetimeMinutes int    `json:"poolLifetimeMinutes" yaml:"poolLifetimeMinutes"`
	PoolReapSeconds     int    `json:"poolReapSeconds" yaml:"poolReapSeconds"`
	AutoReconnect       bool   `json:"autoReconnect" yaml:"autoReconnect"`
	ReconnectIntervalMs int    `json:"reconnectIntervalMs" yaml:"reconnectIntervalMs"`
}

func DefaultConfig() Config {
	return Config{
		Address:             "127.0.0.1:15555",
		PoolMaxSize:         20,
		PoolLifetimeMinutes: 10,
		PoolReapSeconds:     60,
		AutoReconnect:       true,
		ReconnectIntervalMs: 3000,
	}
}

func (c Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}
	return nil
}

func (c Config) poolConfig() network.PoolConfig {
	return network.PoolConfig{
		MaxSize:      c.PoolMaxSize,
		Lifetime:     time.Duration(c.PoolLifetimeMinutes) * time.Minute,
		ReapInterval: time.Duration(c.PoolReapSeconds) * time.Second,
	}
}

func (c Config) clientOptions() []network.Option {
	return []network.Option{
		network.WithAutoReconnect(c.AutoReconnect),
		network.WithReconnectInterval(time.Duration(c.ReconnectIntervalMs) * time.Millisecond),
	}
}
