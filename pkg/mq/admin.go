package mq

import (
	"context"

	"gbus/pkg/broker"
	"gbus/pkg/glog"
	"gbus/pkg/lib/xerror"
	"gbus/pkg/protocol"

	"go.uber.org/zap"
)

// MqAdmin 队列管理，Consumer 与 Producer 共用
type MqAdmin struct {
	broker  broker.IBroker
	mq      string
	options *Options
}

func NewMqAdmin(b broker.IBroker, mq string, option ...Option) *MqAdmin {
	return &MqAdmin{
		broker:  b,
		mq:      mq,
		options: loadOptions(option...),
	}
}

func (a *MqAdmin) Mq() string {
	return a.mq
}

func (a *MqAdmin) Mode() MqMode {
	return a.options.Mode
}

func (a *MqAdmin) Broker() broker.IBroker {
	return a.broker
}

// CreateMQ 声明队列，broker 返回 200 表示成功
func (a *MqAdmin) CreateMQ(ctx context.Context) error {
	req := protocol.New()
	req.SetCmd(protocol.CmdCreateMQ)
	req.SetMq(a.mq)
	req.SetMqMode(int(a.options.Mode))

	res, err := a.broker.InvokeSync(ctx, req, a.options.InvokeTimeout)
	if err != nil {
		return err
	}
	if !res.IsStatus200() {
		return xerror.Wrapf(ErrCreateMQ, "mq %s status %d: %s", a.mq, res.Status, res.BodyString())
	}
	glog.Info("创建队列", zap.String("mq", a.mq), zap.Int("mode", int(a.options.Mode)))
	return nil
}

func (a *MqAdmin) clientHint() *broker.ClientHint {
	return &broker.ClientHint{Mq: a.mq}
}
