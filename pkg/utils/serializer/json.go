/**
 * @Author: dingQingHui
 * @Description:
 * @File: json
 * @Version: 1.0.0
 * @Date: 2024/11/19 18:19
 */

package serializer

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type jsonCodec struct {
}

// Unmarshal 数字解码为 json.Number，保留整数精度
func (p *jsonCodec) Unmarshal(data []byte, msg interface{}) error {
	if len(data) == 0 || msg == nil {
		return ErrJsonUnPack
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(msg); err != nil {
		return errors.Wrap(ErrJsonUnPack, err.Error())
	}
	return nil
}

func (p *jsonCodec) Marshal(msg interface{}) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(ErrJsonPack, err.Error())
	}
	return data, nil
}

func (p *jsonCodec) ContentType() string {
	return ContentTypeJson
}
