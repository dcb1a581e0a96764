// Package broker 定义访问 broker 的抽象，SingleBroker 为单节点实现。
package broker

import (
	"context"
	"time"

	"gbus/pkg/network"
	"gbus/pkg/protocol"
)

// ClientHint 选择连接时的提示，单节点实现忽略
type ClientHint struct {
	Mq     string
	Server string
}

type IBroker interface {
	// GetClient 获取一个独占的客户端
	GetClient(hint *ClientHint) (*network.Client, error)
	// CloseClient 销毁客户端，不归还
	CloseClient(c *network.Client)
	// ReturnClient 归还客户端以便复用
	ReturnClient(c *network.Client)
	// InvokeSync 借用客户端完成一次请求响应
	InvokeSync(ctx context.Context, msg *protocol.Message, timeout time.Duration) (*protocol.Message, error)
	Close() error
}
