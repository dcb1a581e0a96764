package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gbus/pkg/mq"
	"gbus/pkg/utils/charset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:15555", cfg.Broker.Address)
	assert.Equal(t, 20, cfg.Broker.PoolMaxSize)
	assert.Equal(t, 10, cfg.Broker.PoolLifetimeMinutes)
	assert.Equal(t, 30000, cfg.Mq.ConsumeTimeoutMs)
	assert.Equal(t, charset.Default, cfg.Rpc.Encoding)
}

func TestLoadYaml(t *testing.T) {
	path := writeFile(t, "gbus.yaml", `
broker:
  address: 10.0.0.1:15555
  poolMaxSize: 5
mq:
  mq: orders
  modes: [MQ, PubSub]
  topic: paid
rpc:
  module: billing
  encoding: GBK
  timeoutMs: 2000
glog:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "10.0.0.1:15555", cfg.Broker.Address)
	assert.Equal(t, 5, cfg.Broker.PoolMaxSize)
	// 未配置的字段保留默认值
	assert.Equal(t, 10, cfg.Broker.PoolLifetimeMinutes)
	assert.True(t, cfg.Broker.AutoReconnect)
	assert.Equal(t, 30000, cfg.Mq.ConsumeTimeoutMs)
	assert.Equal(t, "billing", cfg.Rpc.Module)
	assert.Equal(t, "debug", cfg.Glog.Level)

	consumer, err := cfg.NewConsumer(nil)
	require.NoError(t, err)
	assert.True(t, consumer.Mode().Has(mq.PubSub))
	assert.Equal(t, "paid", consumer.Topic())
	assert.Equal(t, 30*time.Second, consumer.ConsumeTimeout())
}

func TestLoadJson(t *testing.T) {
	path := writeFile(t, "gbus.json", `{"broker":{"address":"broker:15555"},"rpc":{"consumerCount":4}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "broker:15555", cfg.Broker.Address)
	assert.Equal(t, 4, cfg.Rpc.ConsumerCount)
	assert.Equal(t, 64, cfg.Rpc.WorkerPoolSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrReadConfigFile)

	_, err = Load(writeFile(t, "bad.yaml", "broker: ["))
	assert.ErrorIs(t, err, ErrUnmarshalConfigFile)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Mq.Mq = "q"
	cfg.Mq.Modes = []string{"Bogus"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Rpc.Encoding = "no-such-charset"
	assert.ErrorIs(t, cfg.Validate(), charset.ErrUnknownCharset)

	cfg = Default()
	_, err := cfg.NewConsumer(nil)
	assert.ErrorIs(t, err, mq.ErrEmptyMq)
}

func TestNewBroker(t *testing.T) {
	cfg := Default()
	b, err := cfg.NewBroker()
	require.NoError(t, err)
	assert.Equal(t, cfg.Broker.Address, b.Address())
	require.NoError(t, b.Close())

	cfg.Broker.Address = ""
	_, err = cfg.NewBroker()
	assert.Error(t, err)
}
