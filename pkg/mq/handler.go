package mq

import (
	"gbus/pkg/protocol"
)

// MessageHandler 推送模式下的消息回调
type MessageHandler interface {
	Handle(msg *protocol.Message, consumer *Consumer)
}

type HandlerFunc func(msg *protocol.Message, consumer *Consumer)

func (f HandlerFunc) Handle(msg *protocol.Message, consumer *Consumer) {
	f(msg, consumer)
}
