package network

import (
	"sync"
	"time"

	"gbus/pkg/glog"
	"gbus/pkg/lib/stopper"
	"gbus/pkg/lib/timex/asynctime"

	"github.com/RussellLuo/timingwheel"
	"go.uber.org/zap"
)

type PoolConfig struct {
	MaxSize      int           // 空闲连接上限
	Lifetime     time.Duration // 连接最长存活时间
	ReapInterval time.Duration // 后台清理间隔，<= 0 时不启动
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxSize:      20,
		Lifetime:     10 * time.Minute,
		ReapInterval: time.Minute,
	}
}

// Pool 同一 broker 地址的空闲连接队列，先进先出
type Pool struct {
	stopper.Stopper
	mu       sync.Mutex
	address  string
	cfg      PoolConfig
	options  []Option
	idle     []*Client
	reaper   *timingwheel.Timer
	newerFun func() *Client
}

func NewPool(address string, cfg PoolConfig, option ...Option) *Pool {
	def := DefaultPoolConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = def.Lifetime
	}
	pool := &Pool{
		address: address,
		cfg:     cfg,
		options: option,
		idle:    make([]*Client, 0, cfg.MaxSize),
	}
	pool.newerFun = func() *Client {
		return NewClient(pool.address, pool.options...)
	}
	if cfg.ReapInterval > 0 {
		pool.reaper = asynctime.Every(cfg.ReapInterval, pool.reap)
	}
	return pool
}

func (p *Pool) Address() string {
	return p.address
}

// Borrow 优先复用最早归还的连接，无可用连接时新建。
// 借出数量不设上限，空闲数由 Return 限制在 MaxSize 以内
func (p *Pool) Borrow() (*Client, error) {
	p.mu.Lock()
	if p.IsStop() {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	for len(p.idle) > 0 {
		c := p.idle[0]
		p.idle[0] = nil
		p.idle = p.idle[1:]
		if c.IsConnected() && !p.expired(c) {
			p.mu.Unlock()
			return c, nil
		}
		_ = c.Close()
	}
	p.mu.Unlock()
	return p.newerFun(), nil
}

// Return 已断开、已过期或队列已满的连接直接关闭
func (p *Pool) Return(c *Client) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// 与 Dispose 的清空在同一把锁内判断
	if !p.IsStop() && c.IsConnected() && len(p.idle) < p.cfg.MaxSize && !p.expired(c) {
		p.idle = append(p.idle, c)
		return
	}
	_ = c.Close()
}

// IdleCount 当前空闲连接数
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Dispose 关闭所有空闲连接，之后 Borrow 返回 ErrPoolClosed
func (p *Pool) Dispose() {
	p.mu.Lock()
	if !p.Stop() {
		p.mu.Unlock()
		return
	}
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	if p.reaper != nil {
		p.reaper.Stop()
	}
	for _, c := range idle {
		_ = c.Close()
	}
}

func (p *Pool) expired(c *Client) bool {
	return time.Since(c.CreatedAt()) >= p.cfg.Lifetime
}

func (p *Pool) reap() {
	if p.IsStop() {
		return
	}
	p.mu.Lock()
	kept := p.idle[:0]
	var stale []*Client
	for _, c := range p.idle {
		if c.IsConnected() && !p.expired(c) {
			kept = append(kept, c)
			continue
		}
		stale = append(stale, c)
	}
	for i := len(kept); i < len(p.idle); i++ {
		p.idle[i] = nil
	}
	p.idle = kept
	p.mu.Unlock()

	for _, c := range stale {
		_ = c.Close()
	}
	if len(stale) > 0 {
		glog.Debug("清理过期连接", zap.String("address", p.address), zap.Int("count", len(stale)))
	}
}
