package mq

import (
	"errors"
	"fmt"
)

var (
	// ErrRegister 队列注册失败或注册后仍然不存在
	ErrRegister = errors.New("register error")
	// ErrCreateMQ broker 拒绝创建队列
	ErrCreateMQ = errors.New("create mq failed")
	ErrEmptyMq  = errors.New("mq name is empty")
	ErrNoClient = errors.New("consumer has no client")
)

// ErrUnknownMode 未知的队列模式名
func ErrUnknownMode(name string) error {
	return fmt.Errorf("mq mode: %s is not support", name)
}
