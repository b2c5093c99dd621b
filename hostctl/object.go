package hostctl

import (
	"encoding/json"
	"strconv"
)

// Params 方法参数与对象属性。数值可能来自JSON解码（float64），
// 读取时统一转换。
type Params map[string]interface{}

// Object 宿主机管理对象
type Object struct {
	Path  string `json:"path"`
	Class string `json:"class"`
	Props Params `json:"props"`
}

func NewObject(class string) *Object {
	return &Object{Class: class, Props: Params{}}
}

// Clone 深拷贝属性，用于从模板派生新的设置对象
func (o *Object) Clone() *Object {
	c := &Object{Path: o.Path, Class: o.Class, Props: make(Params, len(o.Props))}
	for k, v := range o.Props {
		switch t := v.(type) {
		case []string:
			c.Props[k] = append([]string(nil), t...)
		case *Object:
			c.Props[k] = t.Clone()
		default:
			c.Props[k] = v
		}
	}
	return c
}

func (o *Object) Set(name string, v interface{}) *Object {
	if o.Props == nil {
		o.Props = Params{}
	}
	o.Props[name] = v
	return o
}

func (o *Object) Has(name string) bool         { return o.Props.Has(name) }
func (o *Object) String(name string) string    { return o.Props.String(name) }
func (o *Object) Strings(name string) []string { return o.Props.Strings(name) }
func (o *Object) Uint16(name string) uint16    { return uint16(o.Props.Uint64(name)) }
func (o *Object) Uint32(name string) uint32    { return uint32(o.Props.Uint64(name)) }
func (o *Object) Uint64(name string) uint64    { return o.Props.Uint64(name) }
func (o *Object) Int64(name string) int64      { return o.Props.Int64(name) }
func (o *Object) Bool(name string) bool        { return o.Props.Bool(name) }

func (p Params) Has(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []interface{}:
		if len(v) > 0 {
			s, _ := v[0].(string)
			return s
		}
	case nil:
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return ""
}

func (p Params) Strings(name string) []string {
	switch v := p[name].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []interface{}:
		var ret []string
		for _, i := range v {
			if s, ok := i.(string); ok {
				ret = append(ret, s)
			}
		}
		return ret
	}
	return nil
}

func (p Params) Uint64(name string) uint64 {
	n := p.Int64(name)
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func (p Params) Uint32(name string) uint32 { return uint32(p.Uint64(name)) }

func (p Params) Int64(name string) int64 {
	switch v := p[name].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func (p Params) Bool(name string) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Object 读取嵌入对象，兼容JSON解码后的map
func (p Params) Object(name string) *Object {
	switch v := p[name].(type) {
	case *Object:
		return v
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var o Object
		if json.Unmarshal(b, &o) != nil {
			return nil
		}
		return &o
	}
	return nil
}

// Objects 读取嵌入对象数组
func (p Params) Objects(name string) []*Object {
	switch v := p[name].(type) {
	case []*Object:
		return v
	case *Object:
		return []*Object{v}
	case []interface{}:
		var ret []*Object
		for i := range v {
			o := Params{"o": v[i]}.Object("o")
			if o != nil {
				ret = append(ret, o)
			}
		}
		return ret
	}
	return nil
}
