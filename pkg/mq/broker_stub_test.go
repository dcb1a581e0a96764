package mq

import (
	"context"
	"sync"
	"time"

	"gbus/pkg/broker"
	"gbus/pkg/mqtest"
	"gbus/pkg/network"
	"gbus/pkg/protocol"
)

// stubBroker 客户端走 net.Pipe，InvokeSync 由测试脚本决定结果
type stubBroker struct {
	dialer *mqtest.PipeDialer
	invoke func(msg *protocol.Message) (*protocol.Message, error)

	mu      sync.Mutex
	gets    int
	closes  int
	returns int
	invokes []*protocol.Message
}

var _ broker.IBroker = (*stubBroker)(nil)

func newStubBroker() *stubBroker {
	return &stubBroker{
		dialer: mqtest.NewPipeDialer(),
		invoke: func(*protocol.Message) (*protocol.Message, error) {
			return protocol.NewResponse(protocol.StatusOK, nil), nil
		},
	}
}

func (b *stubBroker) GetClient(_ *broker.ClientHint) (*network.Client, error) {
	b.mu.Lock()
	b.gets++
	b.mu.Unlock()
	return network.NewClient("pipe", network.WithDialer(b.dialer.Dial), network.WithAutoReconnect(false)), nil
}

func (b *stubBroker) CloseClient(c *network.Client) {
	b.mu.Lock()
	b.closes++
	b.mu.Unlock()
	_ = c.Close()
}

func (b *stubBroker) ReturnClient(c *network.Client) {
	b.mu.Lock()
	b.returns++
	b.mu.Unlock()
	_ = c.Close()
}

func (b *stubBroker) InvokeSync(_ context.Context, msg *protocol.Message, _ time.Duration) (*protocol.Message, error) {
	b.mu.Lock()
	b.invokes = append(b.invokes, msg.Clone())
	b.mu.Unlock()
	return b.invoke(msg)
}

func (b *stubBroker) Close() error {
	b.dialer.Close()
	return nil
}

func (b *stubBroker) counts() (gets, closes, returns, invokes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets, b.closes, b.returns, len(b.invokes)
}

// delivered 模拟 broker 投递：id 为消费请求的 id，rawid 为原始消息 id
func delivered(req *protocol.Message, rawID, body string) *protocol.Message {
	res := mqtest.Response(req.Id(), protocol.StatusOK, body)
	res.SetRawId(rawID)
	return res
}
