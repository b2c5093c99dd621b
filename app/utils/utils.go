package utils

import (
	"encoding/json"
	"hyperv-facade/app/logging"
	"reflect"
)

func ToJson(data interface{}) string {
	if data == nil {
		return ""
	}

	b, err := json.Marshal(data)
	if err != nil {
		logging.L().Errorf("[%v] to JSON失败: %v", data, err)
		return ""
	}
	return string(b)
}

func NilNext(t interface{}, others ...interface{}) interface{} {
	if IsNil(t) {
		for _, o := range others {
			if !IsNil(o) {
				return o
			}
		}
	} else {
		return t
	}
	return nil
}

func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}
	vi := reflect.ValueOf(i)
	if vi.Kind() == reflect.Ptr {
		return vi.IsNil()
	}
	return false
}

// Quote WQL字符串字面量转义
func Quote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b = append(b, '\'')
		}
		b = append(b, s[i])
	}
	return string(append(b, '\''))
}
