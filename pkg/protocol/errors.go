package protocol

import "errors"

var (
	ErrInvalidFrame  = errors.New("invalid frame")
	ErrHeadTooLarge  = errors.New("frame head too large")
	// ErrInvalidHeader 起始行或头部无法无损编码
	ErrInvalidHeader = errors.New("invalid header")
)
