package netutil

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

var errNotTCP = errors.New("conn is not *net.TCPConn")

// SockOptions 客户端连接的 socket 选项，零值表示不修改
type SockOptions struct {
	NoDelay         bool
	KeepAlivePeriod time.Duration
	RcvBuf          int
	SndBuf          int
	// LingerSec < 0 时不设置
	LingerSec int
}

// Apply 对 TCP 连接设置选项，非 TCP 连接（如 net.Pipe）直接忽略
func Apply(conn net.Conn, opts SockOptions) error {
	if _, ok := conn.(*net.TCPConn); !ok {
		return nil
	}
	if err := SetTCPNoDelay(conn, opts.NoDelay); err != nil {
		return err
	}
	if opts.KeepAlivePeriod > 0 {
		if err := SetTCPKeepAlive(conn, true, opts.KeepAlivePeriod); err != nil {
			return err
		}
	}
	if opts.RcvBuf > 0 {
		if err := SetRcvBuffer(conn, opts.RcvBuf); err != nil {
			return err
		}
	}
	if opts.SndBuf > 0 {
		if err := SetSndBuffer(conn, opts.SndBuf); err != nil {
			return err
		}
	}
	if opts.LingerSec >= 0 {
		if err := SetTCPLinger(conn, true, opts.LingerSec); err != nil {
			return err
		}
	}
	return nil
}

func rawConnOf(conn net.Conn) (syscall.RawConn, error) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil, errNotTCP
	}
	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("get TCP conn raw conn failed: %w", err)
	}
	return rawConn, nil
}

// SetTCPNoDelay 禁用/启用 Nagle 算法
func SetTCPNoDelay(conn net.Conn, enable bool) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return errNotTCP
	}
	return tcpConn.SetNoDelay(enable)
}

// SetTCPKeepAlive 配置 TCP 保活
func SetTCPKeepAlive(conn net.Conn, enable bool, period time.Duration) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return errNotTCP
	}
	if err := tcpConn.SetKeepAlive(enable); err != nil {
		return fmt.Errorf("set keepalive enable failed: %w", err)
	}
	if !enable || period <= 0 {
		return nil
	}
	if err := tcpConn.SetKeepAlivePeriod(period); err != nil {
		return fmt.Errorf("set keepalive period failed: %w", err)
	}
	return nil
}

func setIntOpt(conn net.Conn, opt int, value int, name string) error {
	rawConn, err := rawConnOf(conn)
	if err != nil {
		return err
	}
	var controlErr error
	if err := rawConn.Control(func(fd uintptr) {
		if err := setSockOptInt(fd, syscall.SOL_SOCKET, opt, value); err != nil {
			controlErr = fmt.Errorf("set %s failed: %w", name, err)
		}
	}); err != nil {
		return fmt.Errorf("control raw conn failed: %w", err)
	}
	return controlErr
}

func SetRcvBuffer(conn net.Conn, rcvBuf int) error {
	return setIntOpt(conn, syscall.SO_RCVBUF, rcvBuf, "SO_RCVBUF")
}

func SetSndBuffer(conn net.Conn, sndBuf int) error {
	return setIntOpt(conn, syscall.SO_SNDBUF, sndBuf, "SO_SNDBUF")
}

// SetTCPLinger 配置 SO_LINGER，lingerSec 为关闭前等待的秒数
func SetTCPLinger(conn net.Conn, enable bool, lingerSec int) error {
	rawConn, err := rawConnOf(conn)
	if err != nil {
		return err
	}
	var controlErr error
	if err := rawConn.Control(func(fd uintptr) {
		linger := syscall.Linger{}
		if enable {
			linger.Onoff = 1
			linger.Linger = int32(lingerSec)
		}
		if err := setSockOptLinger(fd, syscall.SOL_SOCKET, syscall.SO_LINGER, &linger); err != nil {
			controlErr = fmt.Errorf("set SO_LINGER failed: %w", err)
		}
	}); err != nil {
		return fmt.Errorf("control raw conn failed: %w", err)
	}
	return controlErr
}
