/**
 * @Author: dingQingHui
 * @Description:
 * @File: msgpack
 * @Version: 1.0.0
 * @Date: 2024/11/19 18:20
 */

package serializer

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

type msgPackCodec struct {
}

func (p *msgPackCodec) Unmarshal(data []byte, msg interface{}) error {
	if len(data) == 0 || msg == nil {
		return ErrMsgPackUnPack
	}
	if err := msgpack.Unmarshal(data, msg); err != nil {
		return errors.Wrap(ErrMsgPackUnPack, err.Error())
	}
	return nil
}

func (p *msgPackCodec) Marshal(msg interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(ErrMsgPackPack, err.Error())
	}
	return data, nil
}

func (p *msgPackCodec) ContentType() string {
	return ContentTypeMsgPack
}
