package e

var Message = map[string]string{
	Success:          "成功",
	Accepted:         "请求已接收",
	SystemError:      "错误",
	BadRequest:       "请求参数错误",
	Unauthorized:     "需要认证Token",
	ConnectFailed:    "连接失败",
	NotEnabled:       "未开启配置",
	NotFound:         "对象不存在",
	TokenInvalid:     "token无效",
	TokenExpired:     "token已过期",
	PermissionDenied: "没有权限",
	InvalidState:     "当前状态不允许该操作",
	CapacityExceeded: "资源不足",
	MmioNotReady:     "虚拟机MMIO空间未配置",
	PoolNotFound:     "资源池不存在",
	CapsNotFound:     "资源池没有分配能力",
	TemplateNotFound: "资源池没有默认设置模板",
	Timeout:          "等待超时",
	FAILED:           "操作失败",
}

func GetMessage(code string) string {
	msg, ok := Message[code]
	if ok {
		return msg
	}
	return code
}
