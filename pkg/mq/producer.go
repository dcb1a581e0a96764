package mq

import (
	"context"
	"time"

	"gbus/pkg/broker"
	"gbus/pkg/protocol"
)

// Producer 向队列投递消息
type Producer struct {
	*MqAdmin
}

func NewProducer(b broker.IBroker, mq string, option ...Option) *Producer {
	return &Producer{
		MqAdmin: NewMqAdmin(b, mq, option...),
	}
}

// Produce ack 为 true 时等待 broker 回执，队列不存在则注册一次后重试；
// ack 为 false 时只写出，返回 (nil, nil)
func (p *Producer) Produce(ctx context.Context, msg *protocol.Message, timeout time.Duration) (*protocol.Message, error) {
	msg.SetCmd(protocol.CmdProduce)
	msg.SetMq(p.mq)
	if !msg.Ack() {
		return nil, p.send(ctx, msg, timeout)
	}

	res, err := p.broker.InvokeSync(ctx, msg, timeout)
	if err != nil {
		return nil, err
	}
	if !res.IsStatus404() {
		return res, nil
	}
	if err = p.CreateMQ(ctx); err != nil {
		return nil, err
	}
	return p.broker.InvokeSync(ctx, msg, timeout)
}

func (p *Producer) send(ctx context.Context, msg *protocol.Message, timeout time.Duration) error {
	client, err := p.broker.GetClient(p.clientHint())
	if err != nil {
		return err
	}
	if err = client.Send(ctx, msg, timeout); err != nil {
		p.broker.CloseClient(client)
		return err
	}
	p.broker.ReturnClient(client)
	return nil
}
