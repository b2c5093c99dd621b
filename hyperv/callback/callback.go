package callback

import (
	"context"
	"hyperv-facade/api/e"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/config"
	"hyperv-facade/hyperv/notify"
	"hyperv-facade/hyperv/protocol"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

var httpTimeout = 30 * time.Second

type Callbacker struct {
	Req protocol.CallbackReq
}

func NewCallbacker(req protocol.CallbackReq) *Callbacker {
	return &Callbacker{
		Req: req,
	}
}

func (c *Callbacker) CallbackObj(requestID string, data interface{}) {
	if data == nil {
		data = e.EmptyObject()
	}
	c.callback(requestID, data, nil)
}

func (c *Callbacker) CallbackArr(requestID string, data interface{}) {
	if data == nil {
		data = e.EmptyArray()
	}
	c.callback(requestID, data, nil)
}

func (c *Callbacker) CallbackErr(requestID string, data interface{}, err error) {
	c.callback(requestID, data, err)
}

func (c *Callbacker) callback(requestID string, data interface{}, err error) {
	res := protocol.CallbackRes{
		RequestID: requestID,
		Data:      data,
		Code:      e.CodeOf(err),
	}
	if err != nil {
		res.Message = err.Error()
	} else {
		res.Message = e.GetMessage(res.Code)
	}
	_ = c.sendByHttp(res)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = notify.Publish(ctx, notify.Event{
		RequestID: res.RequestID,
		Code:      res.Code,
		Message:   res.Message,
		Data:      res.Data,
	})
}

// target 请求未指定回调地址时使用配置中的默认地址
func (c *Callbacker) target() *protocol.Http {
	var def *protocol.Http
	if config.G.Hyperv.Default.Callback != nil {
		def = config.G.Hyperv.Default.Callback.HttpPost
	}
	cb, ok := utils.NilNext(c.Req.HttpPost, def).(*protocol.Http)
	if !ok {
		return nil
	}
	return cb
}

func (c *Callbacker) sendByHttp(res protocol.CallbackRes) error {
	httpCB := c.target()
	if !httpCB.Usable() {
		return nil
	}

	body := utils.ToJson(res)
	logging.L().Debugf("http回调：\nPOST %s \nHeaders: %s \nPayload: %s", httpCB.URL, httpCB.Headers, body)
	post, err := http.NewRequest("POST", httpCB.URL, strings.NewReader(body))
	if err != nil {
		logging.L().Error("http post回调时，创建http请求失败", err)
		return err
	}

	post.Header.Add("Content-Type", "application/json")
	for k, v := range httpCB.Headers {
		post.Header.Add(k, v)
	}
	client := &http.Client{
		Timeout: httpTimeout,
	}
	resp, err := client.Do(post)
	if err != nil {
		logging.L().Errorf("http post回调时，请求回调URL失败\n: POST %s\n %s\n %v", httpCB.URL, body, err)
		return err
	}
	defer resp.Body.Close()

	if logging.IsDebug() || resp.StatusCode > 399 {
		rbody, _ := ioutil.ReadAll(resp.Body)
		if resp.StatusCode > 399 {
			logging.L().Errorf("http post回调后，响应错误\n: POST %s\n %s\n响应状态: %d\n响应内容: %s",
				httpCB.URL, body, resp.StatusCode, string(rbody))
		} else {
			logging.L().Debugf("响应状态: %d\n响应内容: %s", resp.StatusCode, string(rbody))
		}
	}
	return nil
}
