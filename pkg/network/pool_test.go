package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"gbus/pkg/mqtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, cfg PoolConfig) (*Pool, *mqtest.PipeDialer) {
	d := mqtest.NewPipeDialer()
	p := NewPool("pipe", cfg, WithDialer(d.Dial))
	t.Cleanup(func() {
		p.Dispose()
		d.Close()
	})
	return p, d
}

func borrowConnected(t *testing.T, p *Pool) *Client {
	c, err := p.Borrow()
	require.NoError(t, err)
	require.NoError(t, c.ConnectIfNeeded(context.Background()))
	return c
}

func TestPool_ReuseFIFO(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 4, Lifetime: time.Minute})

	c1 := borrowConnected(t, p)
	c2 := borrowConnected(t, p)
	p.Return(c1)
	p.Return(c2)
	assert.Equal(t, 2, p.IdleCount())

	got, err := p.Borrow()
	require.NoError(t, err)
	assert.Same(t, c1, got)
	got, err = p.Borrow()
	require.NoError(t, err)
	assert.Same(t, c2, got)
	assert.Equal(t, 0, p.IdleCount())
}

func TestPool_ReturnBounds(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 1, Lifetime: time.Minute})

	c1 := borrowConnected(t, p)
	c2 := borrowConnected(t, p)
	p.Return(c1)
	p.Return(c2)
	assert.Equal(t, 1, p.IdleCount())
	assert.True(t, c1.IsConnected())
	assert.False(t, c2.IsConnected())

	reused, err := p.Borrow()
	require.NoError(t, err)
	assert.Same(t, c1, reused)

	// 未连接的客户端不会入队
	fresh, err := p.Borrow()
	require.NoError(t, err)
	assert.False(t, fresh.IsConnected())
	p.Return(fresh)
	assert.Equal(t, 0, p.IdleCount())
	p.Return(reused)
	assert.Equal(t, 1, p.IdleCount())
}

func TestPool_LifetimeEviction(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 4, Lifetime: 30 * time.Millisecond})

	c := borrowConnected(t, p)
	p.Return(c)
	require.Equal(t, 1, p.IdleCount())
	time.Sleep(50 * time.Millisecond)

	got, err := p.Borrow()
	require.NoError(t, err)
	assert.NotSame(t, c, got)
	assert.False(t, c.IsConnected())

	// 过期连接归还时直接关闭
	stale := borrowConnected(t, p)
	time.Sleep(50 * time.Millisecond)
	p.Return(stale)
	assert.Equal(t, 0, p.IdleCount())
	assert.False(t, stale.IsConnected())
}

func TestPool_Reaper(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 4, Lifetime: 40 * time.Millisecond, ReapInterval: 10 * time.Millisecond})

	c := borrowConnected(t, p)
	p.Return(c)
	require.Equal(t, 1, p.IdleCount())
	require.Eventually(t, func() bool {
		return p.IdleCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPool_Dispose(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 4, Lifetime: time.Minute})
	c := borrowConnected(t, p)
	p.Return(c)

	p.Dispose()
	p.Dispose()
	assert.False(t, c.IsConnected())
	_, err := p.Borrow()
	assert.ErrorIs(t, err, ErrPoolClosed)

	other := NewClient("pipe")
	p.Return(other)
	assert.Equal(t, 0, p.IdleCount())
}

func TestPool_ConcurrentBorrowReturn(t *testing.T) {
	const maxSize, workers, rounds = 4, 16, 50
	p, _ := newTestPool(t, PoolConfig{MaxSize: maxSize, Lifetime: time.Minute})

	var inUse sync.Map
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				c, err := p.Borrow()
				if !assert.NoError(t, err) {
					return
				}
				if _, dup := inUse.LoadOrStore(c, struct{}{}); dup {
					t.Errorf("client %p borrowed twice", c)
					return
				}
				if !assert.NoError(t, c.ConnectIfNeeded(context.Background())) {
					return
				}
				assert.LessOrEqual(t, p.IdleCount(), maxSize)
				inUse.Delete(c)
				p.Return(c)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, p.IdleCount(), maxSize)
	assert.Positive(t, p.IdleCount())
}

func TestPool_ReturnDuringDispose(t *testing.T) {
	p, _ := newTestPool(t, PoolConfig{MaxSize: 32, Lifetime: time.Minute})
	clients := make([]*Client, 32)
	for i := range clients {
		clients[i] = borrowConnected(t, p)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			<-start
			p.Return(c)
		}(c)
	}
	close(start)
	p.Dispose()
	wg.Wait()

	// 无论先后，归还的连接不会留在已关闭的池中
	assert.Equal(t, 0, p.IdleCount())
	for _, c := range clients {
		assert.False(t, c.IsConnected())
	}
}
