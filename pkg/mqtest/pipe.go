package mqtest

import (
	"context"
	"net"
	"sync"
	"time"

	"gbus/pkg/protocol"
)

// Peer 脚本化的 broker 端，基于 net.Pipe
type Peer struct {
	Conn  net.Conn
	codec *protocol.Codec
	buf   []byte
}

// Read 读取一个完整帧
func (p *Peer) Read() (*protocol.Message, error) {
	chunk := make([]byte, 4096)
	for {
		msg, n, err := p.codec.Decode(p.buf)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			p.buf = p.buf[n:]
			return msg, nil
		}
		r, err := p.Conn.Read(chunk)
		if err != nil {
			return nil, err
		}
		p.buf = append(p.buf, chunk[:r]...)
	}
}

func (p *Peer) Write(msg *protocol.Message) error {
	data, err := p.codec.Encode(msg)
	if err != nil {
		return err
	}
	_, err = p.Conn.Write(data)
	return err
}

// PipeDialer 每次拨号生成一对 net.Pipe，服务端通过 Next 取出
type PipeDialer struct {
	mu      sync.Mutex
	peers   chan *Peer
	conns   []net.Conn
	dials   int
	failErr error
}

func NewPipeDialer() *PipeDialer {
	return &PipeDialer{peers: make(chan *Peer, 64)}
}

// Dial 未被 Next 取走的服务端超过缓冲时直接丢弃，管道在 Close 时关闭
func (d *PipeDialer) Dial(_ context.Context, _ string) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	if d.failErr != nil {
		err := d.failErr
		d.mu.Unlock()
		return nil, err
	}
	client, server := net.Pipe()
	d.conns = append(d.conns, client, server)
	d.mu.Unlock()
	select {
	case d.peers <- &Peer{Conn: server, codec: protocol.NewCodec()}:
	default:
	}
	return client, nil
}

// Fail 之后的拨号返回 err，nil 恢复正常
func (d *PipeDialer) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failErr = err
}

// Next 等待下一次拨号产生的服务端，超时返回 nil
func (d *PipeDialer) Next(timeout time.Duration) *Peer {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p := <-d.peers:
		return p
	case <-timer.C:
		return nil
	}
}

func (d *PipeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// Close 关闭所有管道
func (d *PipeDialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.conns {
		_ = c.Close()
	}
}

// Response 构造带 id 的响应
func Response(id string, status int, body string) *protocol.Message {
	m := protocol.NewResponse(status, []byte(body))
	m.SetId(id)
	return m
}
