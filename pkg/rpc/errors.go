package rpc

import (
	"errors"
	"fmt"
)

var (
	// ErrReturnFormat 响应既没有 result 也没有 error
	ErrReturnFormat = errors.New("return format error")
	// ErrServiceNotFound broker 上不存在该 RPC 队列
	ErrServiceNotFound = errors.New("rpc service not found")
	ErrNilService      = errors.New("rpc service is nil")
)

// Error 远端方法返回的错误
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func errMethodNotFound(method string) *Error {
	return NewError("%s not found", method)
}

func errArgumentNotMatch() *Error {
	return NewError("number of argument not match")
}

func errMissingMethod() *Error {
	return NewError("missing method name")
}
