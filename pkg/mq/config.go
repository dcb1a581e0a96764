package mq

import (
	"time"
)

type Config struct {
	Mq               string   `json:"mq" yaml:"mq"`
	Modes            []string `json:"modes" yaml:"modes"`
	Topic            string   `json:"topic" yaml:"topic"`
	ConsumeTimeoutMs int      `json:"consumeTimeoutMs" yaml:"consumeTimeoutMs"`
}

func DefaultConfig() Config {
	return Config{
		Modes:            []string{"MQ"},
		ConsumeTimeoutMs: 30000,
	}
}

func (c Config) Validate() error {
	if c.Mq == "" {
		return ErrEmptyMq
	}
	_, err := ParseMode(c.Modes)
	return err
}

// Options 转换为消费者选项
func (c Config) Options() ([]Option, error) {
	mode, err := ParseMode(c.Modes)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithMode(mode),
		WithTopic(c.Topic),
		WithConsumeTimeout(time.Duration(c.ConsumeTimeoutMs) * time.Millisecond),
	}, nil
}
