package rpc

import (
	"time"

	"gbus/pkg/mq"
	"gbus/pkg/utils/charset"
	"gbus/pkg/utils/serializer"
)

type Config struct {
	Module         string `json:"module" yaml:"module"`
	Encoding       string `json:"encoding" yaml:"encoding"`
	ContentType    string `json:"contentType" yaml:"contentType"`
	TimeoutMs      int    `json:"timeoutMs" yaml:"timeoutMs"`
	ConsumerCount  int    `json:"consumerCount" yaml:"consumerCount"`
	WorkerPoolSize int    `json:"workerPoolSize" yaml:"workerPoolSize"`
	RouteTimeoutMs int    `json:"routeTimeoutMs" yaml:"routeTimeoutMs"`
}

func DefaultConfig() Config {
	return Config{
		Encoding:       charset.Default,
		ContentType:    serializer.ContentTypeJson,
		TimeoutMs:      10000,
		ConsumerCount:  1,
		WorkerPoolSize: 64,
		RouteTimeoutMs: 10000,
	}
}

func (c Config) Validate() error {
	_, err := charset.Lookup(c.Encoding)
	return err
}

// ClientOptions mqOptions 为队列选项，通常来自 mq.Config
func (c Config) ClientOptions(mqOptions ...mq.Option) []Option {
	return []Option{
		WithModule(c.Module),
		WithEncoding(c.Encoding),
		WithSerializer(serializer.ByContentType(c.ContentType)),
		WithTimeout(time.Duration(c.TimeoutMs) * time.Millisecond),
		WithMqOptions(mqOptions...),
	}
}

func (c Config) ServiceOptions(mqOptions ...mq.Option) []ServiceOption {
	return []ServiceOption{
		WithConsumerCount(c.ConsumerCount),
		WithWorkerPoolSize(c.WorkerPoolSize),
		WithRouteTimeout(time.Duration(c.RouteTimeoutMs) * time.Millisecond),
		WithConsumerOptions(mqOptions...),
	}
}
