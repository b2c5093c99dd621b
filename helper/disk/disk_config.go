package disk

import (
	"strings"
)

const (
	TypeFixed        = "fixed"
	TypeDynamic      = "dynamic"
	TypeDifferencing = "differencing"
)

const (
	FormatVhd  = "vhd"
	FormatVhdx = "vhdx"
)

// vhd格式的最大容量
const maxVhdSize uint64 = 2040 * 1024 * 1024 * 1024

var Types []Type
var TypeMapping = map[string]*Type{}
var Formats = map[string]uint16{FormatVhd: 2, FormatVhdx: 3}

type Type struct {
	Label string
	Code  uint16
	// NeedParent 差异磁盘需要父磁盘
	NeedParent bool
}

func init() {
	fixed := Type{Label: TypeFixed, Code: 2}
	Types = append(Types, fixed)
	TypeMapping[TypeFixed] = &fixed

	dynamic := Type{Label: TypeDynamic, Code: 3}
	Types = append(Types, dynamic)
	TypeMapping[TypeDynamic] = &dynamic

	differencing := Type{Label: TypeDifferencing, Code: 4, NeedParent: true}
	Types = append(Types, differencing)
	TypeMapping[TypeDifferencing] = &differencing
}

func GetType(code uint16) string {
	for _, t := range Types {
		if t.Code == code {
			return t.Label
		}
	}
	return ""
}

func GetFormat(code uint16) string {
	for k, v := range Formats {
		if v == code {
			return k
		}
	}
	return ""
}

// FormatOfPath 按扩展名判断格式
func FormatOfPath(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".vhdx"):
		return FormatVhdx
	case strings.HasSuffix(p, ".vhd"):
		return FormatVhd
	}
	return ""
}
