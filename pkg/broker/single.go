package broker

import (
	"context"
	"time"

	"gbus/pkg/glog"
	"gbus/pkg/lib/xerror"
	"gbus/pkg/network"
	"gbus/pkg/protocol"

	"go.uber.org/zap"
)

var _ IBroker = (*SingleBroker)(nil)

// SingleBroker 单个 broker 地址，客户端来自连接池
type SingleBroker struct {
	cfg  Config
	pool *network.Pool
}

// NewSingleBroker option 追加在配置生成的客户端选项之后
func NewSingleBroker(cfg Config, option ...network.Option) (*SingleBroker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := append(cfg.clientOptions(), option...)
	b := &SingleBroker{
		cfg:  cfg,
		pool: network.NewPool(cfg.Address, cfg.poolConfig(), options...),
	}
	glog.Info("broker 初始化", zap.String("address", cfg.Address), zap.Int("poolMaxSize", cfg.PoolMaxSize))
	return b, nil
}

func (b *SingleBroker) Address() string {
	return b.cfg.Address
}

func (b *SingleBroker) GetClient(_ *ClientHint) (*network.Client, error) {
	c, err := b.pool.Borrow()
	if err != nil {
		return nil, xerror.WithStack(err)
	}
	return c, nil
}

func (b *SingleBroker) CloseClient(c *network.Client) {
	if c == nil {
		return
	}
	_ = c.Close()
}

func (b *SingleBroker) ReturnClient(c *network.Client) {
	b.pool.Return(c)
}

// InvokeSync 出错的客户端直接销毁，避免迟到的响应污染下一次借用
func (b *SingleBroker) InvokeSync(ctx context.Context, msg *protocol.Message, timeout time.Duration) (*protocol.Message, error) {
	c, err := b.pool.Borrow()
	if err != nil {
		return nil, xerror.WithStack(err)
	}
	res, err := c.Invoke(ctx, msg, timeout)
	if err != nil {
		b.CloseClient(c)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, xerror.Wrapf(err, "invoke %s", msg.Cmd())
	}
	b.pool.Return(c)
	return res, nil
}

func (b *SingleBroker) Close() error {
	b.pool.Dispose()
	glog.Info("broker 已关闭", zap.String("address", b.cfg.Address))
	return nil
}
