package network

import (
	"context"
	"net"
	"time"

	"gbus/pkg/glog"
	"gbus/pkg/lib/netutil"

	"go.uber.org/zap"
)

// Dialer 建立到 broker 的连接，测试中可替换为 net.Pipe
type Dialer func(ctx context.Context, address string) (net.Conn, error)

type Option func(*Options)
type Options struct {
	AutoReconnect     bool          // 连接失败后是否自动重试
	ReconnectInterval time.Duration // 重试间隔
	DialTimeout       time.Duration // 单次拨号超时
	ReadBufSize       int           // 每次读取预留的缓冲大小
	Dialer            Dialer
	Sock              netutil.SockOptions
}

func loadOptions(options ...Option) *Options {
	opts := &Options{
		AutoReconnect:     true,
		ReconnectInterval: 3 * time.Second,
		DialTimeout:       3 * time.Second,
		ReadBufSize:       1024 * 4,
		Sock: netutil.SockOptions{
			NoDelay:         true,
			KeepAlivePeriod: 30 * time.Second,
			LingerSec:       -1, // 不设置 SO_LINGER
		},
	}
	for _, option := range options {
		option(opts)
	}
	if opts.Dialer == nil {
		opts.Dialer = tcpDialer(opts.DialTimeout)
	}
	return opts
}

// WithAutoReconnect 设置是否自动重连
func WithAutoReconnect(enable bool) Option {
	return func(opts *Options) {
		opts.AutoReconnect = enable
	}
}

// WithReconnectInterval 设置重连间隔
func WithReconnectInterval(interval time.Duration) Option {
	return func(opts *Options) {
		if interval <= 0 {
			return
		}
		opts.ReconnectInterval = interval
	}
}

func WithDialTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		if timeout <= 0 {
			return
		}
		opts.DialTimeout = timeout
	}
}

// WithReadBufSize 设置读缓冲区大小
func WithReadBufSize(size int) Option {
	return func(opts *Options) {
		if size <= 0 {
			return
		}
		opts.ReadBufSize = size
	}
}

// WithDialer 替换拨号函数
func WithDialer(dialer Dialer) Option {
	return func(opts *Options) {
		if dialer == nil {
			return
		}
		opts.Dialer = dialer
	}
}

// WithSockOptions 设置 socket 选项
func WithSockOptions(sock netutil.SockOptions) Option {
	return func(opts *Options) {
		opts.Sock = sock
	}
}

func tcpDialer(timeout time.Duration) Dialer {
	return func(ctx context.Context, address string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", address)
	}
}

func setConOptions(opts *Options, conn net.Conn) {
	if err := netutil.Apply(conn, opts.Sock); err != nil {
		glog.Warn("设置 socket 选项失败", zap.String("localAddr", conn.LocalAddr().String()), zap.Error(err))
	}
}
