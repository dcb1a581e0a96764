package protocol

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"gbus/pkg/lib/xerror"

	"golang.org/x/exp/slices"
)

var headTerminator = []byte("\r\n\r\n")

func NewCodec() *Codec {
	return new(Codec)
}

// Codec 类 HTTP/1.1 的文本头 + content-length 长度的 body
type Codec struct {
}

// Encode 头部按字段名排序输出，结果确定。
// 无法原样解码的起始行或头部返回 ErrInvalidHeader，不产生任何输出
func (*Codec) Encode(msg *Message) ([]byte, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(128 + len(msg.Body))
	buf.WriteString(startLine(msg))
	buf.WriteString("\r\n")
	for _, k := range sortedKeys(msg.Headers) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(msg.Headers[k])
		buf.WriteString("\r\n")
	}
	buf.WriteString(headerContentLength)
	buf.WriteString(": ")
	buf.WriteString(strconv.Itoa(len(msg.Body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(msg.Body)
	return buf.Bytes(), nil
}

// validate 字段名不能为空、不能含冒号、换行或首尾空白，content-length 由编码器生成；
// 值不能含换行
func validate(msg *Message) error {
	if msg.Status == 0 {
		if strings.ContainsAny(msg.Method, " \r\n") {
			return xerror.Wrapf(ErrInvalidHeader, "method %q", msg.Method)
		}
		if strings.ContainsAny(msg.URL, " \r\n") {
			return xerror.Wrapf(ErrInvalidHeader, "url %q", msg.URL)
		}
	}
	for k, v := range msg.Headers {
		if k == "" || strings.TrimSpace(k) != k || strings.ContainsAny(k, ":\r\n") ||
			strings.EqualFold(k, headerContentLength) {
			return xerror.Wrapf(ErrInvalidHeader, "key %q", k)
		}
		if strings.ContainsAny(v, "\r\n") {
			return xerror.Wrapf(ErrInvalidHeader, "value of %s %q", k, v)
		}
	}
	return nil
}

// Decode 数据不完整时返回 (nil, 0, nil)，成功时返回消费的字节数
func (*Codec) Decode(buf []byte) (*Message, int, error) {
	headEnd := bytes.Index(buf, headTerminator)
	if headEnd < 0 {
		if len(buf) > MaxHeadSize {
			return nil, 0, ErrHeadTooLarge
		}
		return nil, 0, nil
	}

	lines := strings.Split(string(buf[:headEnd]), "\r\n")
	msg := New()
	if err := parseStartLine(msg, lines[0]); err != nil {
		return nil, 0, err
	}

	bodyLen := 0
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, 0, ErrInvalidFrame
		}
		key := strings.TrimSpace(line[:i])
		value := line[i+1:]
		if strings.HasPrefix(value, " ") {
			value = value[1:]
		}
		if strings.EqualFold(key, headerContentLength) {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, 0, ErrInvalidFrame
			}
			bodyLen = n
			continue
		}
		msg.Headers[key] = value
	}

	total := headEnd + len(headTerminator) + bodyLen
	if len(buf) < total {
		return nil, 0, nil
	}
	if bodyLen > 0 {
		msg.Body = make([]byte, bodyLen)
		copy(msg.Body, buf[headEnd+len(headTerminator):total])
	}
	return msg, total, nil
}

func parseStartLine(msg *Message, line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return ErrInvalidFrame
	}
	if strings.HasPrefix(parts[0], "HTTP/") {
		status, err := strconv.Atoi(parts[1])
		if err != nil || status <= 0 {
			return ErrInvalidFrame
		}
		msg.Status = status
		return nil
	}
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "HTTP/") {
		return ErrInvalidFrame
	}
	msg.Method = parts[0]
	msg.URL = parts[1]
	return nil
}

func startLine(msg *Message) string {
	if msg.Status != 0 {
		reason := http.StatusText(msg.Status)
		if reason == "" {
			reason = "Unknown"
		}
		return defaultVersion + " " + strconv.Itoa(msg.Status) + " " + reason
	}
	method := msg.Method
	if method == "" {
		method = http.MethodGet
	}
	url := msg.URL
	if url == "" {
		url = "/"
	}
	return method + " " + url + " " + defaultVersion
}

func sortedKeys(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
