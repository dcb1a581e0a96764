// Package charset 按名称转换文本编码，名称遵循 WHATWG 编码标签（utf-8, gbk, gb18030 ...）
package charset

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const Default = "UTF-8"

var ErrUnknownCharset = errors.New("unknown charset")

// Lookup 名称为空时返回 UTF-8
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrap(ErrUnknownCharset, name)
	}
	return enc, nil
}

// Decode 将指定编码的字节转为 UTF-8
func Decode(name string, data []byte) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return data, nil
	}
	return enc.NewDecoder().Bytes(data)
}

// Encode 将 UTF-8 字节转为指定编码
func Encode(name string, data []byte) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return data, nil
	}
	return enc.NewEncoder().Bytes(data)
}
