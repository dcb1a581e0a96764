package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/duke-git/lancet/v2/convertor"
)

func New() *Message {
	return &Message{
		Headers: make(map[string]string),
	}
}

// NewWithBody 创建携带 body 的请求
func NewWithBody(body []byte) *Message {
	m := New()
	m.Body = body
	return m
}

// NewResponse 创建指定状态码的响应
func NewResponse(status int, body []byte) *Message {
	m := New()
	m.Status = status
	m.Body = body
	return m
}

// Message 帧，Status 非 0 时为响应，否则为请求
type Message struct {
	Status  int
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func (m *Message) GetHeader(key string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

// SetHeader value 为空时删除该字段
func (m *Message) SetHeader(key, value string) {
	if value == "" {
		m.RemoveHeader(key)
		return
	}
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}

func (m *Message) RemoveHeader(key string) {
	delete(m.Headers, key)
}

func (m *Message) Cmd() string       { return m.GetHeader(HeaderCmd) }
func (m *Message) SetCmd(cmd string) { m.SetHeader(HeaderCmd, cmd) }

func (m *Message) Mq() string      { return m.GetHeader(HeaderMq) }
func (m *Message) SetMq(mq string) { m.SetHeader(HeaderMq, mq) }

func (m *Message) Topic() string         { return m.GetHeader(HeaderTopic) }
func (m *Message) SetTopic(topic string) { m.SetHeader(HeaderTopic, topic) }

func (m *Message) Id() string      { return m.GetHeader(HeaderId) }
func (m *Message) SetId(id string) { m.SetHeader(HeaderId, id) }

func (m *Message) RawId() string         { return m.GetHeader(HeaderRawId) }
func (m *Message) SetRawId(rawId string) { m.SetHeader(HeaderRawId, rawId) }

func (m *Message) Encoding() string            { return m.GetHeader(HeaderEncoding) }
func (m *Message) SetEncoding(encoding string) { m.SetHeader(HeaderEncoding, encoding) }

func (m *Message) Sender() string          { return m.GetHeader(HeaderSender) }
func (m *Message) SetSender(sender string) { m.SetHeader(HeaderSender, sender) }

func (m *Message) Recver() string          { return m.GetHeader(HeaderRecver) }
func (m *Message) SetRecver(recver string) { m.SetHeader(HeaderRecver, recver) }

func (m *Message) ContentType() string      { return m.GetHeader(HeaderContentType) }
func (m *Message) SetContentType(ct string) { m.SetHeader(HeaderContentType, ct) }

// Ack 未设置时默认为 true
func (m *Message) Ack() bool {
	v := m.GetHeader(HeaderAck)
	if v == "" {
		return true
	}
	ack, err := convertor.ToBool(v)
	if err != nil {
		return true
	}
	return ack
}

func (m *Message) SetAck(ack bool) {
	m.SetHeader(HeaderAck, strconv.FormatBool(ack))
}

func (m *Message) MqMode() int {
	v := m.GetHeader(HeaderMqMode)
	if v == "" {
		return 0
	}
	mode, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return mode
}

func (m *Message) SetMqMode(mode int) {
	m.SetHeader(HeaderMqMode, strconv.Itoa(mode))
}

func (m *Message) IsStatus404() bool {
	return m.Status == StatusNotFound
}

func (m *Message) IsStatus200() bool {
	return m.Status == StatusOK
}

func (m *Message) SetBody(body []byte) {
	m.Body = body
}

func (m *Message) BodyString() string {
	return string(m.Body)
}

// Clone 深拷贝头部和 body
func (m *Message) Clone() *Message {
	c := &Message{
		Status:  m.Status,
		Method:  m.Method,
		URL:     m.URL,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for k, v := range m.Headers {
		c.Headers[k] = v
	}
	if m.Body != nil {
		c.Body = append([]byte(nil), m.Body...)
	}
	return c
}

func (m *Message) String() string {
	var sb strings.Builder
	sb.WriteString(startLine(m))
	for _, k := range sortedKeys(m.Headers) {
		fmt.Fprintf(&sb, " %s=%s", k, m.Headers[k])
	}
	fmt.Fprintf(&sb, " body=%d", len(m.Body))
	return sb.String()
}
