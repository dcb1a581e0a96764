// Package mqtest 测试用的内存 broker，基于 gnet 事件循环，只实现客户端用到的命令。
package mqtest

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"gbus/pkg/glog"
	"gbus/pkg/protocol"

	"github.com/deckarep/golang-set"
	"github.com/duke-git/lancet/v2/maputil"
	"github.com/google/uuid"
	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"
)

var ErrNotStarted = errors.New("mqtest server not started")

type session struct {
	id   string
	conn gnet.Conn
}

// waiter 挂起的消费请求
type waiter struct {
	session *session
	reqID   string
}

type queue struct {
	mu      sync.Mutex
	pending []*protocol.Message
	waiters []*waiter
}

// Server 内存 broker，队列不持久化，不区分 topic
type Server struct {
	gnet.BuiltinEventEngine
	eng      gnet.Engine
	addr     string
	codec    *protocol.Codec
	declared mapset.Set
	queues   *maputil.ConcurrentMap[string, *queue]
	sessions *maputil.ConcurrentMap[string, *session]
	booted   chan struct{}
	runErr   chan error
}

func NewServer() *Server {
	return &Server{
		codec:    protocol.NewCodec(),
		declared: mapset.NewSet(),
		queues:   maputil.NewConcurrentMap[string, *queue](10),
		sessions: maputil.NewConcurrentMap[string, *session](10),
		booted:   make(chan struct{}),
		runErr:   make(chan error, 1),
	}
}

// FreeAddr 获取一个空闲的本地端口
func FreeAddr() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	return addr, ln.Close()
}

// Start 启动事件循环，返回时已可接受连接
func (s *Server) Start(addr string) error {
	s.addr = addr
	go func() {
		s.runErr <- gnet.Run(s, "tcp://"+addr,
			gnet.WithMulticore(false),
			gnet.WithTCPNoDelay(gnet.TCPNoDelay),
			gnet.WithLogger(gnetLogger{}),
		)
	}()
	select {
	case <-s.booted:
		return nil
	case err := <-s.runErr:
		return err
	case <-time.After(5 * time.Second):
		return ErrNotStarted
	}
}

func (s *Server) Addr() string {
	return s.addr
}

// Stop 停止事件循环并等待退出
func (s *Server) Stop(ctx context.Context) error {
	select {
	case <-s.booted:
	default:
		return ErrNotStarted
	}
	if err := s.eng.Stop(ctx); err != nil {
		return err
	}
	select {
	case <-s.runErr:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Declare 预先声明队列
func (s *Server) Declare(mq string) {
	s.declared.Add(mq)
	s.queues.GetOrSet(mq, new(queue))
}

func (s *Server) Declared(mq string) bool {
	return s.declared.Contains(mq)
}

// Pending 队列中尚未投递的消息数
func (s *Server) Pending(mq string) int {
	q, ok := s.queues.Get(mq)
	if !ok {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.eng = eng
	close(s.booted)
	glog.Debug("mqtest broker 启动", zap.String("addr", s.addr))
	return gnet.None
}

func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	sess := &session{id: uuid.NewString(), conn: c}
	c.SetContext(sess)
	s.sessions.Set(sess.id, sess)
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, _ error) gnet.Action {
	sess, ok := c.Context().(*session)
	if !ok {
		return gnet.None
	}
	s.sessions.Delete(sess.id)
	s.queues.Range(func(_ string, q *queue) bool {
		q.mu.Lock()
		q.removeWaiter(sess)
		q.mu.Unlock()
		return true
	})
	return gnet.None
}

func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	sess, ok := c.Context().(*session)
	if !ok {
		return gnet.Close
	}
	for {
		buf, _ := c.Peek(-1)
		msg, n, err := s.codec.Decode(buf)
		if err != nil {
			glog.Warn("mqtest 非法帧", zap.Error(err))
			return gnet.Close
		}
		if msg == nil {
			return gnet.None
		}
		_, _ = c.Discard(n)
		s.handle(sess, msg)
	}
}

func (s *Server) handle(sess *session, msg *protocol.Message) {
	switch msg.Cmd() {
	case protocol.CmdCreateMQ:
		s.Declare(msg.Mq())
		s.reply(sess, msg.Id(), protocol.StatusOK)
	case protocol.CmdProduce:
		s.produce(sess, msg)
	case protocol.CmdConsume:
		s.consume(sess, msg)
	case protocol.CmdRoute:
		s.route(msg)
	default:
		s.reply(sess, msg.Id(), protocol.StatusError)
	}
}

func (s *Server) produce(sess *session, msg *protocol.Message) {
	q, ok := s.queues.Get(msg.Mq())
	if !ok {
		s.reply(sess, msg.Id(), protocol.StatusNotFound)
		return
	}
	msg.SetSender(sess.id)

	q.mu.Lock()
	var w *waiter
	for len(q.waiters) > 0 && w == nil {
		w = q.waiters[0]
		q.waiters = q.waiters[1:]
		if _, alive := s.sessions.Get(w.session.id); !alive {
			w = nil
		}
	}
	if w == nil {
		q.pending = append(q.pending, msg)
	}
	q.mu.Unlock()

	if w != nil {
		s.deliver(w, msg)
	}
	if msg.Ack() {
		s.reply(sess, msg.Id(), protocol.StatusOK)
	}
}

// consume 同一会话的新请求替换它之前挂起的请求
func (s *Server) consume(sess *session, msg *protocol.Message) {
	q, ok := s.queues.Get(msg.Mq())
	if !ok {
		s.reply(sess, msg.Id(), protocol.StatusNotFound)
		return
	}
	w := &waiter{session: sess, reqID: msg.Id()}

	q.mu.Lock()
	q.removeWaiter(sess)
	var next *protocol.Message
	if len(q.pending) > 0 {
		next = q.pending[0]
		q.pending = q.pending[1:]
	} else {
		q.waiters = append(q.waiters, w)
	}
	q.mu.Unlock()

	if next != nil {
		s.deliver(w, next)
	}
}

func (s *Server) route(msg *protocol.Message) {
	target, ok := s.sessions.Get(msg.Recver())
	if !ok {
		glog.Warn("mqtest 路由目标不存在", zap.String("recver", msg.Recver()))
		return
	}
	out := msg.Clone()
	if out.Status == 0 {
		out.Status = protocol.StatusOK
	}
	s.write(target, out)
}

// deliver 投递时 rawid 为原消息 id，id 为消费请求的 id
func (s *Server) deliver(w *waiter, msg *protocol.Message) {
	out := msg.Clone()
	out.Status = protocol.StatusOK
	out.SetRawId(msg.Id())
	out.SetId(w.reqID)
	s.write(w.session, out)
}

func (s *Server) reply(sess *session, id string, status int) {
	res := protocol.NewResponse(status, nil)
	res.SetId(id)
	s.write(sess, res)
}

func (s *Server) write(sess *session, msg *protocol.Message) {
	data, err := s.codec.Encode(msg)
	if err != nil {
		glog.Warn("mqtest 编码失败", zap.String("session", sess.id), zap.Error(err))
		return
	}
	if err = sess.conn.AsyncWrite(data, nil); err != nil {
		glog.Warn("mqtest 写出失败", zap.String("session", sess.id), zap.Error(err))
	}
}

func (q *queue) removeWaiter(sess *session) {
	kept := q.waiters[:0]
	for _, w := range q.waiters {
		if w.session != sess {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(q.waiters); i++ {
		q.waiters[i] = nil
	}
	q.waiters = kept
}

// gnetLogger 将 gnet 日志输出到 glog
type gnetLogger struct{}

func (gnetLogger) Debugf(format string, args ...interface{}) { glog.Debugf(format, args...) }
func (gnetLogger) Infof(format string, args ...interface{})  { glog.Debugf(format, args...) }
func (gnetLogger) Warnf(format string, args ...interface{})  { glog.Warnf(format, args...) }
func (gnetLogger) Errorf(format string, args ...interface{}) { glog.Errorf(format, args...) }
func (gnetLogger) Fatalf(format string, args ...interface{}) { glog.Errorf(format, args...) }
