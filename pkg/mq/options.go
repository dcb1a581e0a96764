package mq

import (
	"time"
)

type Option func(*Options)
type Options struct {
	Mode           MqMode        // 队列模式
	Topic          string        // PubSub 模式下订阅的 topic
	ConsumeTimeout time.Duration // 单次消费等待时间
	InvokeTimeout  time.Duration // 创建队列等管理请求的超时
	ErrorBackoff   time.Duration // 推送模式下出错后的等待时间
}

func loadOptions(options ...Option) *Options {
	opts := &Options{
		Mode:           MQ,
		ConsumeTimeout: 30 * time.Second,
		InvokeTimeout:  10 * time.Second,
		ErrorBackoff:   time.Second,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}

func WithMode(modes ...MqMode) Option {
	return func(opts *Options) {
		opts.Mode = Combine(modes...)
	}
}

func WithTopic(topic string) Option {
	return func(opts *Options) {
		opts.Topic = topic
	}
}

// WithConsumeTimeout 设置单次消费等待时间
func WithConsumeTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		if timeout <= 0 {
			return
		}
		opts.ConsumeTimeout = timeout
	}
}

func WithInvokeTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		if timeout <= 0 {
			return
		}
		opts.InvokeTimeout = timeout
	}
}

func WithErrorBackoff(backoff time.Duration) Option {
	return func(opts *Options) {
		if backoff < 0 {
			return
		}
		opts.ErrorBackoff = backoff
	}
}
