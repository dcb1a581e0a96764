/**
 * @Author: dingQingHui
 * @Description:
 * @File: api
 * @Version: 1.0.0
 * @Date: 2024/11/19 18:10
 */

package serializer

import "strings"

const (
	ContentTypeJson    = "application/json"
	ContentTypeMsgPack = "application/msgpack"
)

type ISerializer interface {
	Unmarshal(data []byte, msg interface{}) error
	Marshal(msg interface{}) ([]byte, error)
	ContentType() string
}

var (
	Json    ISerializer = new(jsonCodec)
	MsgPack ISerializer = new(msgPackCodec)
)

// ByContentType 按 content-type 选择编解码器，未识别的类型返回 Json
func ByContentType(contentType string) ISerializer {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case ContentTypeMsgPack, "application/x-msgpack":
		return MsgPack
	default:
		return Json
	}
}
