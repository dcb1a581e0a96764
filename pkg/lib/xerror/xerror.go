package xerror

import (
	"github.com/pkg/errors"
)

// Wrap 添加上下文信息，格式 message: err，err 为 nil 时返回 nil
// 包装后的错误仍可用 errors.Is / errors.As 判断
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, message)
}

// Wrapf 同 Wrap，使用格式化字符串
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessagef(err, format, args...)
}

// WithStack 记录调用栈
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}
