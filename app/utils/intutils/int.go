package intutils

// ZeroThen i为0时返回默认值d
func ZeroThen(i, d int) int {
	if i == 0 {
		return d
	}
	return i
}
