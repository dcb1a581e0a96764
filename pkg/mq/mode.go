package mq

import (
	"strings"
)

// MqMode 队列模式，可按位组合
type MqMode int

const (
	MQ     MqMode = 1 << iota // 点对点队列
	PubSub                    // 按 topic 订阅
	Memory                    // 仅内存，不持久化
)

var modeNames = map[string]MqMode{
	"mq":     MQ,
	"pubsub": PubSub,
	"memory": Memory,
}

// Combine 合并多个模式，为空时默认 MQ
func Combine(modes ...MqMode) MqMode {
	if len(modes) == 0 {
		return MQ
	}
	var mode MqMode
	for _, m := range modes {
		mode |= m
	}
	return mode
}

func (m MqMode) Has(flag MqMode) bool {
	return m&flag != 0
}

// ParseMode 解析配置中的模式名，大小写不敏感
func ParseMode(names []string) (MqMode, error) {
	modes := make([]MqMode, 0, len(names))
	for _, name := range names {
		mode, ok := modeNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, ErrUnknownMode(name)
		}
		modes = append(modes, mode)
	}
	return Combine(modes...), nil
}
