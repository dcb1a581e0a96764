package rpc

import (
	"context"

	"gbus/pkg/broker"
	"gbus/pkg/glog"
	"gbus/pkg/lib/stopper"
	"gbus/pkg/lib/workers"
	"gbus/pkg/mq"
	"gbus/pkg/protocol"

	"go.uber.org/zap"
)

// Service 在队列上提供 RPC 服务：多个消费者拉取请求，协程池处理，
// 响应按请求的 sender 路由回调用方
type Service struct {
	stopper.Stopper
	broker     broker.IBroker
	mq         string
	dispatcher *Dispatcher
	options    *ServiceOptions
	consumers  []*mq.Consumer
	pool       *workers.Pool
}

func NewService(b broker.IBroker, mqName string, dispatcher *Dispatcher, option ...ServiceOption) *Service {
	return &Service{
		broker:     b,
		mq:         mqName,
		dispatcher: dispatcher,
		options:    loadServiceOptions(option...),
	}
}

func (s *Service) Start() error {
	pool, err := workers.New(s.options.WorkerPoolSize, false)
	if err != nil {
		return err
	}
	s.pool = pool
	for i := 0; i < s.options.ConsumerCount; i++ {
		consumer := mq.NewConsumer(s.broker, s.mq, s.options.MqOptions...)
		consumer.OnMessage(mq.HandlerFunc(s.handle))
		consumer.Start()
		s.consumers = append(s.consumers, consumer)
	}
	glog.Info("RPC 服务启动", zap.String("mq", s.mq), zap.Int("consumers", s.options.ConsumerCount),
		zap.Strings("methods", s.dispatcher.Methods()))
	return nil
}

func (s *Service) handle(msg *protocol.Message, _ *mq.Consumer) {
	err := s.pool.Submit(func() {
		s.reply(msg)
	}, func(r interface{}) {
		glog.Error("RPC 请求处理异常", zap.String("mq", s.mq), zap.Any("panic", r))
	})
	if err != nil {
		glog.Warn("协程池提交失败，同步处理", zap.String("mq", s.mq), zap.Error(err))
		s.reply(msg)
	}
}

func (s *Service) reply(req *protocol.Message) {
	res := s.dispatcher.Process(req)
	res.SetId(req.Id())
	res.SetRecver(req.Sender())
	res.SetCmd(protocol.CmdRoute)
	res.SetAck(false)

	client, err := s.broker.GetClient(&broker.ClientHint{Mq: s.mq})
	if err != nil {
		glog.Error("RPC 获取连接失败", zap.String("mq", s.mq), zap.Error(err))
		return
	}
	if err = client.Send(context.Background(), res, s.options.RouteTimeout); err != nil {
		s.broker.CloseClient(client)
		glog.Error("RPC 响应发送失败", zap.String("mq", s.mq), zap.String("recver", req.Sender()), zap.Error(err))
		return
	}
	s.broker.ReturnClient(client)
}

// Stop 停止所有消费者并等待处理中的请求
func (s *Service) Stop() {
	if !s.Stopper.Stop() {
		return
	}
	for _, consumer := range s.consumers {
		consumer.Stop()
	}
	if s.pool != nil {
		if err := s.pool.ReleaseTimeout(s.options.StopTimeout); err != nil {
			glog.Warn("RPC 协程池释放超时", zap.String("mq", s.mq),
				zap.Int64("running", s.pool.Running()), zap.Error(err))
		}
		if n := s.pool.PanicCount(); n > 0 {
			glog.Warn("RPC 处理过程中发生异常", zap.String("mq", s.mq), zap.Uint64("panics", n))
		}
	}
	glog.Info("RPC 服务停止", zap.String("mq", s.mq))
}
