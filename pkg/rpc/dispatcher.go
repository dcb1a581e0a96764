package rpc

import (
	"reflect"
	"sync"

	"gbus/pkg/glog"
	"gbus/pkg/lib/grs"
	"gbus/pkg/protocol"
	"gbus/pkg/utils/charset"
	"gbus/pkg/utils/reflectx"
	"gbus/pkg/utils/serializer"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// RemoteService 可选接口，返回 Go 方法名到远程方法名的映射，
// 实现后只注册映射中的方法，值为空时沿用方法名
type RemoteService interface {
	RemoteMethods() map[string]string
}

// Method 注册表项
type Method struct {
	Id      string
	Invoker Invoker
	Params  []Param
}

// Dispatcher 按方法名分发 RPC 请求，注册在启动阶段完成
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string]*Method
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		methods: make(map[string]*Method),
	}
}

// Register 重复的 id 保留先注册的，返回 false
func (d *Dispatcher) Register(id string, fn Invoker, params ...Param) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.methods[id]; ok {
		glog.Warn("RPC 方法重复注册，已忽略", zap.String("method", id))
		return false
	}
	d.methods[id] = &Method{Id: id, Invoker: fn, Params: params}
	return true
}

// RegisterService 通过反射注册 svc 的导出方法，返回注册成功的数量
func (d *Dispatcher) RegisterService(svc any) (int, error) {
	if svc == nil {
		return 0, ErrNilService
	}
	methods := reflectx.SuitableMethods(svc)
	delete(methods, "RemoteMethods")

	ids := make(map[string]string, len(methods))
	if remote, ok := svc.(RemoteService); ok {
		for name, id := range remote.RemoteMethods() {
			if _, exists := methods[name]; !exists {
				glog.Warn("RPC 方法不存在或签名不支持", zap.String("service", reflectx.TypeFullName(svc)), zap.String("method", name))
				continue
			}
			if id == "" {
				id = name
			}
			ids[name] = id
		}
	} else {
		for name := range methods {
			ids[name] = name
		}
	}

	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	slices.Sort(names)

	recv := reflect.ValueOf(svc)
	count := 0
	for _, name := range names {
		m := methods[name]
		params := make([]Param, 0, m.Type.NumIn()-1)
		argTypes := make([]reflect.Type, 0, m.Type.NumIn()-1)
		for i := 1; i < m.Type.NumIn(); i++ {
			params = append(params, ParamOf(m.Type.In(i)))
			argTypes = append(argTypes, m.Type.In(i))
		}
		if d.Register(ids[name], methodInvoker(recv, m, argTypes), params...) {
			count++
		}
	}
	glog.Info("注册 RPC 服务", zap.String("service", reflectx.TypeFullName(svc)), zap.Int("methods", count))
	return count, nil
}

func methodInvoker(recv reflect.Value, m reflect.Method, argTypes []reflect.Type) Invoker {
	return func(args []any) (any, error) {
		in := make([]reflect.Value, 0, len(args)+1)
		in = append(in, recv)
		for i, arg := range args {
			if arg == nil {
				in = append(in, reflect.Zero(argTypes[i]))
				continue
			}
			in = append(in, reflect.ValueOf(arg))
		}
		out := m.Func.Call(in)
		switch len(out) {
		case 0:
			return nil, nil
		case 1:
			if reflectx.IsErrorType(m.Type.Out(0)) {
				return nil, toError(out[0])
			}
			return out[0].Interface(), nil
		default:
			return out[0].Interface(), toError(out[1])
		}
	}
}

func toError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// Methods 已注册的方法名，按字典序
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.methods))
	for id := range d.methods {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (d *Dispatcher) lookup(id string) (*Method, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.methods[id]
	return m, ok
}

// Process 处理一次请求，总是返回 {"error":..., "result":...} 信封
func (d *Dispatcher) Process(req *protocol.Message) *protocol.Message {
	ser := serializer.ByContentType(req.ContentType())
	encoding := req.Encoding()

	body, err := charset.Decode(encoding, req.Body)
	var result any
	if err != nil {
		encoding = ""
	} else {
		result, err = d.dispatch(ser, body)
	}

	envelope := map[string]any{"error": nil, "result": nil}
	if err != nil {
		envelope["error"] = err.Error()
	} else {
		envelope["result"] = result
	}

	data, mErr := ser.Marshal(envelope)
	if mErr != nil {
		glog.Error("RPC 结果序列化失败", zap.Error(mErr))
		data, _ = ser.Marshal(map[string]any{"error": mErr.Error(), "result": nil})
	}
	if encoded, eErr := charset.Encode(encoding, data); eErr == nil {
		data = encoded
	} else {
		encoding = ""
	}

	res := protocol.NewResponse(protocol.StatusOK, data)
	res.SetContentType(ser.ContentType())
	res.SetEncoding(encoding)
	return res
}

func (d *Dispatcher) dispatch(ser serializer.ISerializer, body []byte) (any, error) {
	var parsed map[string]any
	if err := ser.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	method, _ := parsed["method"].(string)
	if method == "" {
		return nil, errMissingMethod()
	}

	var args []any
	switch params := parsed["params"].(type) {
	case nil:
	case []any:
		args = params
	default:
		return nil, NewError("params must be an array")
	}

	return d.call(method, args)
}

func invoke(target *Method, args []any) (result any, err error) {
	grs.Try(func() {
		result, err = target.Invoker(args)
	}, func(r any) {
		result = nil
		err = NewError("%s panic: %v", target.Id, r)
	})
	return result, err
}

// Call 直接调用已注册的方法，参数同样经过转换
func (d *Dispatcher) Call(method string, args ...any) (any, error) {
	return d.call(method, args)
}

// call 参数个数不符时不会调用目标方法
func (d *Dispatcher) call(method string, args []any) (any, error) {
	target, ok := d.lookup(method)
	if !ok {
		return nil, errMethodNotFound(method)
	}
	if len(target.Params) != len(args) {
		return nil, errArgumentNotMatch()
	}
	values := make([]any, len(args))
	for i, arg := range args {
		v, err := target.Params[i](arg)
		if err != nil {
			return nil, NewError("argument %d of %s: %v", i, method, err)
		}
		values[i] = v
	}
	return invoke(target, values)
}
