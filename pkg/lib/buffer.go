package lib

import (
	"errors"
	"io"
)

const maxBufferCap = 1024 * 1024 * 10

var errInsufficient = errors.New("insufficient data to skip")

// Buffer 读缓冲区，未读数据前移复用空间
type Buffer struct {
	buf []byte // 实际存储数据的字节切片
	r   int    // 读指针
	w   int    // 写指针
}

// New 创建一个指定初始容量的缓冲区
func New(initialCap int) *Buffer {
	if initialCap <= 0 {
		initialCap = 4096
	}
	return &Buffer{buf: make([]byte, initialCap)}
}

// Len 可读取的字节数
func (b *Buffer) Len() int {
	return b.w - b.r
}

func (b *Buffer) Reset() {
	b.r = 0
	b.w = 0
}

// Bytes 返回当前可读取的数据切片（不复制）
func (b *Buffer) Bytes() []byte {
	return b.buf[b.r:b.w]
}

// 确保有足够的写入空间，不够则扩容
func (b *Buffer) ensureSpace(n int) {
	if len(b.buf)-b.w >= n {
		return
	}
	// 先压缩，将未读数据移到开头
	if b.r > 0 {
		copy(b.buf, b.buf[b.r:b.w])
		b.w -= b.r
		b.r = 0
	}
	if len(b.buf)-b.w >= n {
		return
	}
	newCap := len(b.buf)
	for newCap-b.w < n {
		newCap *= 2
		if newCap > maxBufferCap {
			newCap = maxBufferCap + n
		}
	}
	newBuf := make([]byte, newCap)
	copy(newBuf, b.buf[:b.w])
	b.buf = newBuf
}

// ReadFrom 从 reader 读取一次写入缓冲区，至少预留 min 字节空间
func (b *Buffer) ReadFrom(reader io.Reader, min int) (int, error) {
	if min <= 0 {
		min = 4096
	}
	b.ensureSpace(min)
	n, err := reader.Read(b.buf[b.w:])
	if n > 0 {
		b.w += n
	}
	return n, err
}

// Skip 跳过n个字节（移动读指针）
func (b *Buffer) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if b.Len() < n {
		return errInsufficient
	}
	b.r += n
	if b.r == b.w {
		b.Reset()
	}
	return nil
}
