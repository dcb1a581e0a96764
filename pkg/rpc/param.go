package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/duke-git/lancet/v2/convertor"
)

// Param 将请求中解出的宽松值（json.Number、string、msgpack 整数等）转为具体类型
type Param func(v any) (any, error)

// Invoker 参数已按 Param 转换
type Invoker func(args []any) (any, error)

func Int(v any) (any, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt || n < math.MinInt {
		return nil, fmt.Errorf("%d overflows int", n)
	}
	return int(n), nil
}

func Int64(v any) (any, error) {
	return toInt64(v)
}

func Float64(v any) (any, error) {
	return toFloat64(v)
}

func String(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return convertor.ToString(v), nil
	}
}

func Bool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return convertor.ToBool(x)
	case nil:
		return false, nil
	default:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	}
}

// Any 保持原值，json.Number 转为 int64 或 float64
func Any(v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		return n.Float64()
	}
	return v, nil
}

// Struct 经 JSON 中转解码为 T
func Struct[T any]() Param {
	return func(v any) (any, error) {
		var out T
		if err := remarshal(v, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// SliceOf 经 JSON 中转解码为 []T
func SliceOf[T any]() Param {
	return Struct[[]T]()
}

// ParamOf 按 Go 类型生成 Param，结果的动态类型即 t
func ParamOf(t reflect.Type) Param {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v any) (any, error) {
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			rv := reflect.New(t).Elem()
			if rv.OverflowInt(n) {
				return nil, fmt.Errorf("%d overflows %s", n, t)
			}
			rv.SetInt(n)
			return rv.Interface(), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v any) (any, error) {
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			rv := reflect.New(t).Elem()
			if n < 0 || rv.OverflowUint(uint64(n)) {
				return nil, fmt.Errorf("%d overflows %s", n, t)
			}
			rv.SetUint(uint64(n))
			return rv.Interface(), nil
		}
	case reflect.Float32, reflect.Float64:
		return func(v any) (any, error) {
			f, err := toFloat64(v)
			if err != nil {
				return nil, err
			}
			rv := reflect.New(t).Elem()
			rv.SetFloat(f)
			return rv.Interface(), nil
		}
	case reflect.String:
		return func(v any) (any, error) {
			s, _ := String(v)
			rv := reflect.New(t).Elem()
			rv.SetString(s.(string))
			return rv.Interface(), nil
		}
	case reflect.Bool:
		return func(v any) (any, error) {
			b, err := Bool(v)
			if err != nil {
				return nil, err
			}
			rv := reflect.New(t).Elem()
			rv.SetBool(b.(bool))
			return rv.Interface(), nil
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Any
		}
	}
	return func(v any) (any, error) {
		ptr := reflect.New(t)
		if err := remarshal(v, ptr.Interface()); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("cannot convert null to integer")
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("cannot convert %s to integer", x)
		}
		return int64(f), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return convertor.ToInt(v)
	}
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("cannot convert null to float")
	case json.Number:
		return x.Float64()
	default:
		return convertor.ToFloat(v)
	}
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
