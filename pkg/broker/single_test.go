package broker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gbus/pkg/mqtest"
	"gbus/pkg/network"
	"gbus/pkg/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleBroker_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = ""
	_, err := NewSingleBroker(cfg)
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestSingleBroker_InvokeSync(t *testing.T) {
	addr, err := mqtest.FreeAddr()
	require.NoError(t, err)
	s := mqtest.NewServer()
	require.NoError(t, s.Start(addr))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	cfg := DefaultConfig()
	cfg.Address = s.Addr()
	b, err := NewSingleBroker(cfg)
	require.NoError(t, err)
	defer b.Close()

	msg := protocol.New()
	msg.SetCmd(protocol.CmdCreateMQ)
	msg.SetMq("q")
	res, err := b.InvokeSync(context.Background(), msg, time.Second)
	require.NoError(t, err)
	assert.True(t, res.IsStatus200())
	assert.True(t, s.Declared("q"))
	assert.Equal(t, 1, b.pool.IdleCount())

	// 复用归还的连接
	c, err := b.GetClient(&ClientHint{Mq: "q"})
	require.NoError(t, err)
	assert.True(t, c.IsConnected())
	b.ReturnClient(c)
	assert.Equal(t, 1, b.pool.IdleCount())
}

func TestSingleBroker_InvokeFailure(t *testing.T) {
	addr, err := mqtest.FreeAddr()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Address = addr
	cfg.AutoReconnect = false
	b, err := NewSingleBroker(cfg, network.WithDialTimeout(200*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	msg := protocol.New()
	msg.SetCmd(protocol.CmdConsume)
	_, err = b.InvokeSync(context.Background(), msg, time.Second)
	assert.ErrorIs(t, err, network.ErrConnection)
	assert.Equal(t, 0, b.pool.IdleCount())
}

func TestSingleBroker_Closed(t *testing.T) {
	b, err := NewSingleBroker(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = b.GetClient(nil)
	assert.ErrorIs(t, err, network.ErrPoolClosed)
	// 带调用栈，%+v 输出栈帧
	assert.Contains(t, fmt.Sprintf("%+v", err), "GetClient")

	_, err = b.InvokeSync(context.Background(), protocol.New(), time.Second)
	assert.ErrorIs(t, err, network.ErrPoolClosed)
}
