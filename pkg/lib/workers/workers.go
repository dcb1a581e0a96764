package workers

import (
	"sync/atomic"
	"time"

	"gbus/pkg/glog"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Pool 基于 ants 的任务池，每个任务独立捕获 panic
type Pool struct {
	pool       *ants.Pool
	running    atomic.Int64
	panicCount atomic.Uint64
}

// New size <= 0 时使用 ants 默认容量
func New(size int, nonblocking bool) (*Pool, error) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	p, err := ants.NewPool(size,
		ants.WithNonblocking(nonblocking),
		ants.WithPanicHandler(func(r interface{}) {
			glog.Error("任务池异常", zap.Any("panic", r))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

func (p *Pool) Submit(fn func(), recoverFun func(err interface{})) error {
	return p.pool.Submit(func() {
		p.running.Add(1)
		defer p.running.Add(-1)
		p.try(fn, recoverFun)
	})
}

func (p *Pool) try(fn func(), reFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			p.panicCount.Add(1)
			if reFun != nil {
				reFun(err)
			}
		}
	}()
	fn()
}

func (p *Pool) Running() int64 {
	return p.running.Load()
}

func (p *Pool) PanicCount() uint64 {
	return p.panicCount.Load()
}

// ReleaseTimeout 等待已提交任务完成后释放
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}
