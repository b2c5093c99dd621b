package protocol

import "strings"

// CallbackReq 异步请求完成后的回调方式，未设置时使用配置中的默认回调
type CallbackReq struct {
	HttpPost  *Http  `json:"httpPost,omitempty" mapstructure:"httpPost"`
	RequestID string `json:"-"`
}

// CallbackRes 回调内容，code与同步接口的响应码一致
type CallbackRes struct {
	RequestID string      `json:"requestId"`
	Code      string      `json:"code"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type Http struct {
	URL     string            `json:"url,omitempty" mapstructure:"url"`
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"`
}

// Usable 地址为http(s) URL
func (h *Http) Usable() bool {
	if h == nil {
		return false
	}
	u := strings.ToLower(strings.TrimSpace(h.URL))
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
