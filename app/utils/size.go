package utils

import (
	"fmt"
	"github.com/docker/go-units"
	"strconv"
)

const MB = 1024 * 1024

// ParseSize 解析"40GB"、"512MiB"或纯字节数，按二进制单位计算
func ParseSize(s string) (uint64, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("无效的大小: %s", s)
	}
	return uint64(n), nil
}

// HumanSize 按二进制单位格式化字节数
func HumanSize(b uint64) string {
	return units.BytesSize(float64(b))
}
