package rpc

import (
	"time"

	"gbus/pkg/mq"
	"gbus/pkg/utils/charset"
	"gbus/pkg/utils/serializer"
)

type Option func(*Options)
type Options struct {
	Module     string                 // 请求体中的 module 字段
	Encoding   string                 // 请求与响应的文本编码
	Timeout    time.Duration          // 单次调用超时
	Serializer serializer.ISerializer // 请求体编码，默认 JSON
	MqOptions  []mq.Option            // 队列管理选项
}

func loadOptions(options ...Option) *Options {
	opts := &Options{
		Encoding:   charset.Default,
		Timeout:    10 * time.Second,
		Serializer: serializer.Json,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}

func WithModule(module string) Option {
	return func(opts *Options) {
		opts.Module = module
	}
}

// WithEncoding 设置文本编码，如 UTF-8、GBK
func WithEncoding(encoding string) Option {
	return func(opts *Options) {
		if encoding == "" {
			return
		}
		opts.Encoding = encoding
	}
}

// WithTimeout 设置调用超时
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		if timeout <= 0 {
			return
		}
		opts.Timeout = timeout
	}
}

// WithSerializer 设置请求体编码，响应按 content-type 解码
func WithSerializer(s serializer.ISerializer) Option {
	return func(opts *Options) {
		if s == nil {
			return
		}
		opts.Serializer = s
	}
}

func WithMqOptions(options ...mq.Option) Option {
	return func(opts *Options) {
		opts.MqOptions = append(opts.MqOptions, options...)
	}
}

type ServiceOption func(*ServiceOptions)
type ServiceOptions struct {
	ConsumerCount  int           // 并发消费者数量
	WorkerPoolSize int           // 处理请求的协程池大小
	RouteTimeout   time.Duration // 回写响应的超时
	StopTimeout    time.Duration // 停止时等待处理中请求的时间
	MqOptions      []mq.Option   // 消费者选项
}

func loadServiceOptions(options ...ServiceOption) *ServiceOptions {
	opts := &ServiceOptions{
		ConsumerCount:  1,
		WorkerPoolSize: 64,
		RouteTimeout:   10 * time.Second,
		StopTimeout:    5 * time.Second,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// WithConsumerCount 设置消费者数量
func WithConsumerCount(count int) ServiceOption {
	return func(opts *ServiceOptions) {
		if count <= 0 {
			return
		}
		opts.ConsumerCount = count
	}
}

// WithWorkerPoolSize 设置协程池大小
func WithWorkerPoolSize(size int) ServiceOption {
	return func(opts *ServiceOptions) {
		if size <= 0 {
			return
		}
		opts.WorkerPoolSize = size
	}
}

func WithRouteTimeout(timeout time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		if timeout <= 0 {
			return
		}
		opts.RouteTimeout = timeout
	}
}

func WithStopTimeout(timeout time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		if timeout <= 0 {
			return
		}
		opts.StopTimeout = timeout
	}
}

func WithConsumerOptions(options ...mq.Option) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.MqOptions = append(opts.MqOptions, options...)
	}
}
