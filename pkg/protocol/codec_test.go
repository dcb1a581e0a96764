package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest() *Message {
	m := New()
	m.SetCmd(CmdProduce)
	m.SetMq("MyRpc")
	m.SetId("c4a1")
	m.SetAck(false)
	m.SetHeader("custom", " leading space")
	m.SetBody([]byte(`{"method":"plus","params":[1,2]}`))
	return m
}

func mustEncode(t *testing.T, m *Message) []byte {
	t.Helper()
	data, err := NewCodec().Encode(m)
	require.NoError(t, err)
	return data
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec()

	t.Run("request", func(t *testing.T) {
		m := newRequest()
		m.Method = "POST"
		m.URL = "/rpc"
		data := mustEncode(t, m)

		got, n, err := codec.Decode(data)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, len(data), n)
		assert.Equal(t, m.Headers, got.Headers)
		assert.Equal(t, m.Body, got.Body)
		assert.Equal(t, "POST", got.Method)
		assert.Equal(t, "/rpc", got.URL)
		assert.Equal(t, 0, got.Status)
	})

	t.Run("response", func(t *testing.T) {
		m := NewResponse(StatusNotFound, nil)
		m.SetId("x")
		data := mustEncode(t, m)
		assert.True(t, strings.HasPrefix(string(data), "HTTP/1.1 404 Not Found\r\n"))

		got, n, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.True(t, got.IsStatus404())
		assert.Equal(t, "x", got.Id())
		assert.Empty(t, got.Body)
	})

	t.Run("default start line", func(t *testing.T) {
		data := mustEncode(t, New())
		assert.Equal(t, "GET / HTTP/1.1\r\ncontent-length: 0\r\n\r\n", string(data))
	})

	t.Run("awkward values", func(t *testing.T) {
		m := New()
		m.Headers["empty"] = ""
		m.Headers["padded"] = "  both sides  "
		m.Headers["colon"] = "a: b"
		m.SetBody([]byte("\r\n\r\nbody with terminator"))
		data := mustEncode(t, m)

		got, n, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, m.Headers, got.Headers)
		assert.Equal(t, m.Body, got.Body)
	})
}

func TestCodec_EncodeRejectsHeaders(t *testing.T) {
	codec := NewCodec()
	cases := map[string]func(m *Message){
		"crlf in value":       func(m *Message) { m.Headers["note"] = "a\r\n\r\nb" },
		"lf in value":         func(m *Message) { m.Headers["note"] = "a\nb" },
		"blank key":           func(m *Message) { m.Headers[""] = "v" },
		"padded key":          func(m *Message) { m.Headers[" k"] = "v" },
		"trailing space key":  func(m *Message) { m.Headers["k "] = "v" },
		"colon in key":        func(m *Message) { m.Headers["a:b"] = "v" },
		"newline in key":      func(m *Message) { m.Headers["a\nb"] = "v" },
		"content-length key":  func(m *Message) { m.Headers["content-length"] = "7" },
		"content-length case": func(m *Message) { m.Headers["Content-Length"] = "7" },
		"space in url":        func(m *Message) { m.URL = "/a b" },
		"newline in method":   func(m *Message) { m.Method = "GET\r\n" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := New()
			m.SetId("x")
			mutate(m)
			data, err := codec.Encode(m)
			assert.ErrorIs(t, err, ErrInvalidHeader)
			assert.Nil(t, data)
		})
	}

	// 响应不校验请求行
	res := NewResponse(StatusOK, nil)
	res.URL = "/ignored path"
	_, err := codec.Encode(res)
	assert.NoError(t, err)
}

func TestCodec_EncodeSortedHeaders(t *testing.T) {
	m := New()
	m.SetHeader("zeta", "1")
	m.SetHeader("alpha", "2")
	m.SetHeader("mq", "3")
	data := string(mustEncode(t, m))
	assert.Less(t, strings.Index(data, "alpha"), strings.Index(data, "mq"))
	assert.Less(t, strings.Index(data, "mq"), strings.Index(data, "zeta"))
	assert.Equal(t, data, string(mustEncode(t, m.Clone())))
}

func TestCodec_DecodeEverySplitPoint(t *testing.T) {
	codec := NewCodec()
	first := newRequest()
	second := NewResponse(StatusOK, []byte("ok"))
	second.SetId("second")
	stream := append(mustEncode(t, first), mustEncode(t, second)...)
	firstLen := len(mustEncode(t, first))

	for split := 0; split < firstLen; split++ {
		got, n, err := codec.Decode(stream[:split])
		require.NoError(t, err, "split %d", split)
		require.Nil(t, got, "split %d", split)
		require.Zero(t, n, "split %d", split)
	}

	got, n, err := codec.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, firstLen, n)
	assert.Equal(t, first.Body, got.Body)

	got, n, err = codec.Decode(stream[n:])
	require.NoError(t, err)
	require.Equal(t, len(stream)-firstLen, n)
	assert.Equal(t, "second", got.Id())
	assert.Equal(t, []byte("ok"), got.Body)
}

func TestCodec_DecodeInvalid(t *testing.T) {
	codec := NewCodec()
	cases := []string{
		"GARBAGE\r\n\r\n",
		"GET /\r\n\r\n",
		"HTTP/1.1 abc OK\r\n\r\n",
		"GET / HTTP/1.1\r\nno-colon-here\r\n\r\n",
		"GET / HTTP/1.1\r\ncontent-length: -1\r\n\r\n",
		"GET / HTTP/1.1\r\ncontent-length: x\r\n\r\n",
	}
	for _, c := range cases {
		_, _, err := codec.Decode([]byte(c))
		assert.ErrorIs(t, err, ErrInvalidFrame, c)
	}
}

func TestCodec_DecodeHeadTooLarge(t *testing.T) {
	codec := NewCodec()
	head := "GET / HTTP/1.1\r\nbig: " + strings.Repeat("a", MaxHeadSize)
	_, _, err := codec.Decode([]byte(head))
	assert.ErrorIs(t, err, ErrHeadTooLarge)

	_, _, err = codec.Decode([]byte(head[:MaxHeadSize]))
	assert.NoError(t, err)
}

func TestMessage_Headers(t *testing.T) {
	m := New()
	assert.True(t, m.Ack())
	m.SetAck(false)
	assert.False(t, m.Ack())

	m.SetMqMode(3)
	assert.Equal(t, 3, m.MqMode())

	m.SetRawId("raw")
	m.SetRawId("")
	_, ok := m.Headers[HeaderRawId]
	assert.False(t, ok)
}
