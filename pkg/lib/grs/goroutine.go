package grs

import (
	"context"

	"gbus/pkg/glog"

	"go.uber.org/zap"
)

// Go 启动协程，panic 会被捕获并记录
func Go(ctx context.Context, f func(ctx context.Context)) {
	go Try(func() { f(ctx) }, nil)
}

// Try 执行 f 并捕获 panic，reFun 不为 nil 时收到 panic 值
func Try(f func(), reFun func(r any)) {
	defer func() {
		if r := recover(); r != nil {
			glog.Error("协程异常", zap.Any("panic", r), zap.Stack("stack"))
			if reFun != nil {
				reFun(r)
			}
		}
	}()
	f()
}
