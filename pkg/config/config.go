// Package config 汇总 broker、mq、rpc 与 glog 的配置，支持 YAML 与 JSON 文件。
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gbus/pkg/broker"
	"gbus/pkg/glog"
	"gbus/pkg/mq"
	"gbus/pkg/network"
	"gbus/pkg/rpc"
	"gbus/pkg/utils/serializer"

	"gopkg.in/yaml.v3"
)

// Config 客户端配置
type Config struct {
	Broker broker.Config `json:"broker" yaml:"broker"`
	Mq     mq.Config     `json:"mq" yaml:"mq"`
	Rpc    rpc.Config    `json:"rpc" yaml:"rpc"`
	Glog   glog.Config   `json:"glog" yaml:"glog"`
}

// Default 生成默认配置
func Default() *Config {
	return &Config{
		Broker: broker.DefaultConfig(),
		Mq:     mq.DefaultConfig(),
		Rpc:    rpc.DefaultConfig(),
		Glog:   *glog.DefaultConfig(),
	}
}

// Load 读取配置文件覆盖默认值，.json 后缀按 JSON 解析，其余按 YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errReadConfigFile(path, err)
	}
	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = serializer.Json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errUnmarshalConfigFile(path, err)
	}
	return cfg, nil
}

// Validate mq 名称为空时不校验 mq 段，纯 RPC 客户端可以不配置
func (c *Config) Validate() error {
	if err := c.Broker.Validate(); err != nil {
		return err
	}
	if c.Mq.Mq != "" {
		if err := c.Mq.Validate(); err != nil {
			return err
		}
	}
	return c.Rpc.Validate()
}

// Setup 按 Glog 段初始化全局日志
func (c *Config) Setup() {
	glog.Init(&c.Glog)
}

func (c *Config) NewBroker(option ...network.Option) (*broker.SingleBroker, error) {
	return broker.NewSingleBroker(c.Broker, option...)
}

func (c *Config) MqOptions() ([]mq.Option, error) {
	return c.Mq.Options()
}

// NewConsumer 使用 Mq 段创建消费者
func (c *Config) NewConsumer(b broker.IBroker) (*mq.Consumer, error) {
	if err := c.Mq.Validate(); err != nil {
		return nil, err
	}
	options, err := c.Mq.Options()
	if err != nil {
		return nil, err
	}
	return mq.NewConsumer(b, c.Mq.Mq, options...), nil
}

// NewRpcClient mq 为服务所在的队列
func (c *Config) NewRpcClient(b broker.IBroker, mqName string) (*rpc.Client, error) {
	options, err := c.Mq.Options()
	if err != nil {
		return nil, err
	}
	return rpc.NewClient(b, mqName, c.Rpc.ClientOptions(options...)...), nil
}

func (c *Config) NewRpcService(b broker.IBroker, mqName string, d *rpc.Dispatcher) (*rpc.Service, error) {
	options, err := c.Mq.Options()
	if err != nil {
		return nil, err
	}
	return rpc.NewService(b, mqName, d, c.Rpc.ServiceOptions(options...)...), nil
}
