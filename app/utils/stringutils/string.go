package stringutils

import "strings"

// EPTThen s为空时返回默认值d
func EPTThen(s, d string) string {
	if strings.TrimSpace(s) == "" {
		return d
	}
	return s
}

// EqualFoldAny s与list中任意一个忽略大小写相等
func EqualFoldAny(s string, list ...string) bool {
	for _, l := range list {
		if strings.EqualFold(s, l) {
			return true
		}
	}
	return false
}
