package network

import (
	"errors"
)

var (
	// ErrConnection 连接失败或连接已断开
	ErrConnection = errors.New("broker connection failed")
	// ErrTimeout 读写超时
	ErrTimeout    = errors.New("broker io timeout")
	// ErrPoolClosed 连接池已关闭
	ErrPoolClosed = errors.New("client pool closed")
)
