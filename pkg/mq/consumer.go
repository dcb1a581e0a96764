package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gbus/pkg/broker"
	"gbus/pkg/glog"
	"gbus/pkg/lib/grs"
	"gbus/pkg/lib/xerror"
	"gbus/pkg/network"
	"gbus/pkg/protocol"

	"go.uber.org/zap"
)

// errFailover 本次拉取因传输异常换了连接
var errFailover = errors.New("consumer failover")

// Consumer 从队列拉取消息，独占一个客户端，传输异常时换新客户端。
// Recv/Take/Route 不可与推送模式并发调用。
type Consumer struct {
	*MqAdmin
	client   *network.Client
	handler  atomic.Pointer[MessageHandler]
	handling atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(b broker.IBroker, mq string, option ...Option) *Consumer {
	return &Consumer{
		MqAdmin: NewMqAdmin(b, mq, option...),
	}
}

func (c *Consumer) Topic() string {
	return c.options.Topic
}

func (c *Consumer) ConsumeTimeout() time.Duration {
	return c.options.ConsumeTimeout
}

// Recv 拉取一条消息，超时或换连接后返回 (nil, nil)
func (c *Consumer) Recv(ctx context.Context, timeout time.Duration) (*protocol.Message, error) {
	msg, err := c.recv(ctx, timeout, false)
	if errors.Is(err, errFailover) {
		return nil, nil
	}
	return msg, err
}

// recv 队列不存在时注册一次后重试，重试仍不存在则返回 ErrRegister
func (c *Consumer) recv(ctx context.Context, timeout time.Duration, registered bool) (*protocol.Message, error) {
	if c.client == nil {
		client, err := c.broker.GetClient(c.clientHint())
		if err != nil {
			return nil, err
		}
		c.client = client
	}

	req := protocol.New()
	req.SetCmd(protocol.CmdConsume)
	req.SetMq(c.mq)
	if c.options.Mode.Has(PubSub) && c.options.Topic != "" {
		req.SetTopic(c.options.Topic)
	}

	res, err := c.client.Invoke(ctx, req, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		if errors.Is(err, network.ErrTimeout) {
			return nil, nil
		}
		glog.Warn("消费连接异常，切换连接", zap.String("mq", c.mq), zap.Error(err))
		c.failover()
		return nil, errFailover
	}

	if res.IsStatus404() {
		if registered {
			return nil, xerror.Wrapf(ErrRegister, "mq %s not found after register", c.mq)
		}
		if err = c.CreateMQ(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", ErrRegister, err)
		}
		return c.recv(ctx, timeout, true)
	}

	res.SetId(res.RawId())
	res.RemoveHeader(protocol.HeaderRawId)
	return res, nil
}

// Take 阻塞直到拿到消息或出错，换连接后等待 ErrorBackoff 再拉取
func (c *Consumer) Take(ctx context.Context) (*protocol.Message, error) {
	for {
		msg, err := c.recv(ctx, c.options.ConsumeTimeout, false)
		if errors.Is(err, errFailover) {
			c.backoff(ctx)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
	}
}

// Route 将响应路由回请求方，不等待回执
func (c *Consumer) Route(ctx context.Context, msg *protocol.Message, timeout time.Duration) error {
	if c.client == nil {
		return ErrNoClient
	}
	msg.SetCmd(protocol.CmdRoute)
	msg.SetAck(false)
	return c.client.Send(ctx, msg, timeout)
}

func (c *Consumer) failover() {
	c.broker.CloseClient(c.client)
	c.client = nil
	client, err := c.broker.GetClient(c.clientHint())
	if err != nil {
		glog.Error("获取新连接失败", zap.String("mq", c.mq), zap.Error(err))
		return
	}
	c.client = client
}

// OnMessage 设置推送模式的处理器
func (c *Consumer) OnMessage(handler MessageHandler) {
	c.handler.Store(&handler)
}

func (c *Consumer) getHandler() MessageHandler {
	h := c.handler.Load()
	if h == nil {
		return nil
	}
	return *h
}

// Start 启动推送循环，重复调用无副作用。上一个循环尚未退出时忽略
func (c *Consumer) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	if c.done != nil {
		select {
		case <-c.done:
		default:
			glog.Warn("推送循环尚未退出，忽略启动", zap.String("mq", c.mq))
			return
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	grs.Go(ctx, func(ctx context.Context) {
		defer close(done)
		// 客户端归推送循环所有，退出时销毁
		defer c.closeClient()
		c.run(ctx)
	})
	glog.Info("消费者启动", zap.String("mq", c.mq))
}

func (c *Consumer) run(ctx context.Context) {
	for ctx.Err() == nil {
		msg, err := c.recv(ctx, c.options.ConsumeTimeout, false)
		if errors.Is(err, errFailover) {
			c.backoff(ctx)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			glog.Error("消费失败", zap.String("mq", c.mq), zap.Error(err))
			c.backoff(ctx)
			continue
		}
		if msg == nil {
			continue
		}
		handler := c.getHandler()
		if handler == nil {
			glog.Warn("未设置消息处理器，请先调用 OnMessage", zap.String("mq", c.mq))
			continue
		}
		c.handling.Store(true)
		grs.Try(func() {
			handler.Handle(msg, c)
		}, nil)
		c.handling.Store(false)
	}
}

func (c *Consumer) backoff(ctx context.Context) {
	if c.options.ErrorBackoff <= 0 {
		return
	}
	timer := time.NewTimer(c.options.ErrorBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Stop 停止推送循环并销毁客户端，客户端不归还连接池。
// 处理器执行期间调用时只发出停止信号，不等待循环退出，客户端由循环退出时销毁
func (c *Consumer) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		glog.Info("消费者停止", zap.String("mq", c.mq))
	}
	if done == nil {
		c.closeClient()
		return
	}
	if c.handling.Load() {
		return
	}
	<-done
	c.closeClient()
}

func (c *Consumer) closeClient() {
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
	}
}

func (c *Consumer) Close() error {
	c.Stop()
	return nil
}
