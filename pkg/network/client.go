package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"gbus/pkg/glog"
	"gbus/pkg/lib"
	"gbus/pkg/lib/xerror"
	"gbus/pkg/protocol"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 用于打断阻塞中的读写
var aLongTimeAgo = time.Unix(1, 0)

// Client 到 broker 的单条连接，按消息 id 匹配请求与响应。
// 非并发安全，同一时刻只能由一个协程使用。
type Client struct {
	address     string
	options     *Options
	codec       *protocol.Codec
	conn        net.Conn
	readBuf     *lib.Buffer
	matchID     string                       // 当前等待的消息 id
	resultTable map[string]*protocol.Message // 提前到达的其它响应
	createdAt   time.Time
}

// NewClient 创建客户端，首次收发时才建立连接
func NewClient(address string, option ...Option) *Client {
	options := loadOptions(option...)
	return &Client{
		address:     address,
		options:     options,
		codec:       protocol.NewCodec(),
		readBuf:     lib.New(options.ReadBufSize),
		resultTable: make(map[string]*protocol.Message),
		createdAt:   time.Now(),
	}
}

func (c *Client) Address() string {
	return c.address
}

func (c *Client) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Client) IsConnected() bool {
	return c.conn != nil
}

// ConnectIfNeeded 未连接时拨号，开启自动重连时失败会一直重试直到 ctx 取消
func (c *Client) ConnectIfNeeded(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := c.options.Dialer(ctx, c.address)
		if err == nil {
			setConOptions(c.options, conn)
			c.conn = conn
			c.readBuf.Reset()
			glog.Debug("连接 broker 成功", zap.String("address", c.address))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !c.options.AutoReconnect {
			return xerror.Wrapf(ErrConnection, "dial %s: %v", c.address, err)
		}
		glog.Warn("连接 broker 失败，稍后重试", zap.String("address", c.address),
			zap.Duration("interval", c.options.ReconnectInterval), zap.Error(err))
		timer := time.NewTimer(c.options.ReconnectInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reconnect 关闭当前连接后重新连接
func (c *Client) Reconnect(ctx context.Context) error {
	c.drop()
	glog.Debug("重连 broker", zap.String("address", c.address))
	return c.ConnectIfNeeded(ctx)
}

// Send 写出消息，id 为空时分配 uuid，并记为等待匹配的 id
func (c *Client) Send(ctx context.Context, msg *protocol.Message, timeout time.Duration) error {
	if err := c.ConnectIfNeeded(ctx); err != nil {
		return err
	}
	c.markMessage(msg)
	if glog.Enabled(zapcore.DebugLevel) {
		glog.Debug("发送", zap.String("address", c.address), zap.Stringer("msg", msg))
	}

	// 编码失败时连接未被写入，保持可用
	data, err := c.codec.Encode(msg)
	if err != nil {
		return xerror.Wrapf(err, "encode %s", msg.Cmd())
	}
	conn := c.conn
	if err = conn.SetWriteDeadline(deadline(timeout)); err != nil {
		return c.ioError(ctx, "write", err)
	}
	stop := watch(ctx, conn)
	n, err := conn.Write(data)
	stop()
	if err != nil {
		if n > 0 {
			// 半帧已写出，连接不可继续使用
			c.drop()
		}
		return c.ioError(ctx, "write", err)
	}
	return nil
}

// Recv 等待与 matchID 相同的响应，其它响应按各自的 id 暂存
func (c *Client) Recv(ctx context.Context, timeout time.Duration) (*protocol.Message, error) {
	if err := c.ConnectIfNeeded(ctx); err != nil {
		return nil, err
	}
	if c.matchID != "" {
		if msg, ok := c.resultTable[c.matchID]; ok {
			delete(c.resultTable, c.matchID)
			return msg, nil
		}
	}

	conn := c.conn
	if err := conn.SetReadDeadline(deadline(timeout)); err != nil {
		return nil, c.ioError(ctx, "read", err)
	}
	stop := watch(ctx, conn)
	defer stop()

	for {
		msg, err := c.decodeBuffered()
		if err != nil {
			return nil, err
		}
		if msg != nil {
			if glog.Enabled(zapcore.DebugLevel) {
				glog.Debug("接收", zap.String("address", c.address), zap.Stringer("msg", msg))
			}
			return msg, nil
		}
		if _, err = c.readBuf.ReadFrom(conn, c.options.ReadBufSize); err != nil {
			return nil, c.ioError(ctx, "read", err)
		}
	}
}

// Invoke Send + Recv
func (c *Client) Invoke(ctx context.Context, msg *protocol.Message, timeout time.Duration) (*protocol.Message, error) {
	if err := c.Send(ctx, msg, timeout); err != nil {
		return nil, err
	}
	return c.Recv(ctx, timeout)
}

// Close 可重复调用
func (c *Client) Close() error {
	c.drop()
	clear(c.resultTable)
	c.matchID = ""
	return nil
}

// decodeBuffered 解出缓冲区中所有完整帧，直到遇到匹配的响应
func (c *Client) decodeBuffered() (*protocol.Message, error) {
	for {
		msg, n, err := c.codec.Decode(c.readBuf.Bytes())
		if err != nil {
			c.drop()
			return nil, fmt.Errorf("%w: decode from %s: %w", ErrConnection, c.address, err)
		}
		if msg == nil {
			return nil, nil
		}
		_ = c.readBuf.Skip(n)
		if c.matchID == "" || msg.Id() == c.matchID {
			return msg, nil
		}
		c.resultTable[msg.Id()] = msg
	}
}

func (c *Client) markMessage(msg *protocol.Message) {
	if msg.Id() == "" {
		msg.SetId(uuid.NewString())
	}
	c.matchID = msg.Id()
}

func (c *Client) drop() {
	if c.conn == nil {
		return
	}
	_ = c.conn.Close()
	c.conn = nil
	c.readBuf.Reset()
}

// ioError ctx 取消时原样返回 ctx 的错误，超时返回 ErrTimeout，其余错误断开连接
func (c *Client) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return xerror.Wrapf(ErrTimeout, "%s %s", op, c.address)
	}
	c.drop()
	glog.Warn("broker 连接异常", zap.String("address", c.address), zap.String("op", op), zap.Error(err))
	return xerror.Wrapf(ErrConnection, "%s %s: %v", op, c.address, err)
}

func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// watch ctx 取消时将读写 deadline 设为过去，返回的函数等待监听协程退出
func watch(ctx context.Context, conn net.Conn) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = conn.SetDeadline(aLongTimeAgo)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}
