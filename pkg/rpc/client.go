package rpc

import (
	"context"
	"encoding/json"

	"gbus/pkg/broker"
	"gbus/pkg/lib/xerror"
	"gbus/pkg/mq"
	"gbus/pkg/protocol"
	"gbus/pkg/utils/charset"
	"gbus/pkg/utils/serializer"

	"github.com/duke-git/lancet/v2/convertor"
)

// Client 通过队列同步调用远端方法
type Client struct {
	*mq.MqAdmin
	options *Options
}

func NewClient(b broker.IBroker, mqName string, option ...Option) *Client {
	options := loadOptions(option...)
	return &Client{
		MqAdmin: mq.NewMqAdmin(b, mqName, options.MqOptions...),
		options: options,
	}
}

// Invoke 返回远端的 result，远端返回 error 时为 *Error
func (c *Client) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	result, err := c.invoke(ctx, method, args)
	if err != nil {
		return nil, err
	}
	return Any(result)
}

// InvokeInto 将 result 解码到 out
func (c *Client) InvokeInto(ctx context.Context, out any, method string, args ...any) error {
	result, err := c.invoke(ctx, method, args)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return xerror.Wrap(ErrReturnFormat, err.Error())
	}
	if err = json.Unmarshal(data, out); err != nil {
		return xerror.Wrap(ErrReturnFormat, err.Error())
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, args []any) (any, error) {
	if args == nil {
		args = []any{}
	}
	req, err := c.newRequest(method, args)
	if err != nil {
		return nil, err
	}
	req.SetCmd(protocol.CmdProduce)
	req.SetMq(c.Mq())
	req.SetAck(false)

	res, err := c.Broker().InvokeSync(ctx, req, c.options.Timeout)
	if err != nil {
		return nil, err
	}
	if res.IsStatus404() {
		return nil, xerror.Wrapf(ErrServiceNotFound, "mq %s", c.Mq())
	}
	return parseResponse(res)
}

func (c *Client) newRequest(method string, args []any) (*protocol.Message, error) {
	ser := c.options.Serializer
	data, err := ser.Marshal(map[string]any{
		"module":   c.options.Module,
		"method":   method,
		"params":   args,
		"encoding": c.options.Encoding,
	})
	if err != nil {
		return nil, err
	}
	if data, err = charset.Encode(c.options.Encoding, data); err != nil {
		return nil, err
	}
	req := protocol.NewWithBody(data)
	req.SetContentType(ser.ContentType())
	req.SetEncoding(c.options.Encoding)
	return req, nil
}

// parseResponse error 非空优先，其次 result
func parseResponse(res *protocol.Message) (any, error) {
	body, err := charset.Decode(res.Encoding(), res.Body)
	if err != nil {
		return nil, err
	}
	var parsed map[string]any
	if err = serializer.ByContentType(res.ContentType()).Unmarshal(body, &parsed); err != nil {
		return nil, xerror.Wrap(ErrReturnFormat, err.Error())
	}
	if e, ok := parsed["error"]; ok && e != nil {
		return nil, &Error{Message: convertor.ToString(e)}
	}
	if result, ok := parsed["result"]; ok {
		return result, nil
	}
	return nil, ErrReturnFormat
}
