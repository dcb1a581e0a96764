package protocol

// 命令
const (
	CmdProduce  = "Produce"
	CmdConsume  = "Consume"
	CmdRoute    = "Route"
	CmdCreateMQ = "CreateMQ"
)

// 头部字段
const (
	HeaderCmd         = "cmd"
	HeaderMq          = "mq"
	HeaderTopic       = "topic"
	HeaderAck         = "ack"
	HeaderId          = "id"
	HeaderRawId       = "rawid"
	HeaderEncoding    = "encoding"
	HeaderSender      = "sender"
	HeaderRecver      = "recver"
	HeaderMqMode      = "mq_mode"
	HeaderContentType = "content-type"

	headerContentLength = "content-length"
)

const (
	StatusOK       = 200
	StatusNotFound = 404
	StatusError    = 500
)

// MaxHeadSize 未结束的头部超过该长度视为非法帧
const MaxHeadSize = 64 * 1024

const defaultVersion = "HTTP/1.1"
