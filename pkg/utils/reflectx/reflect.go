/**
 * @Author: dingQingHui
 * @Description:
 * @File: reflect
 * @Version: 1.0.0
 * @Date: 2024/11/28 15:07
 */

package reflectx

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func TypeFullName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + ":" + t.Name()
}

func IsExportedType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	name := t.Name()
	rune, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(rune) || t.PkgPath() == ""
}

func IsErrorType(t reflect.Type) bool {
	return t == errorType
}

// SuitableMethods 收集可远程调用的导出方法：参数类型均导出，
// 返回值为 ()、(T)、(error) 或 (T, error)
func SuitableMethods(rec interface{}) map[string]reflect.Method {
	typ := reflect.TypeOf(rec)
	methods := make(map[string]reflect.Method)
	for index := 0; index < typ.NumMethod(); index++ {
		fun := typ.Method(index)
		funType := fun.Type
		if fun.PkgPath != "" {
			continue
		}

		// 第 0 个参数为接收者
		isExtraExported := true
		for i := 1; i < funType.NumIn(); i++ {
			if !IsExportedType(funType.In(i)) {
				isExtraExported = false
				break
			}
		}
		if !isExtraExported || funType.IsVariadic() {
			continue
		}

		switch funType.NumOut() {
		case 0, 1:
		case 2:
			if !IsErrorType(funType.Out(1)) {
				continue
			}
		default:
			continue
		}
		methods[fun.Name] = fun
	}
	return methods
}
