package startup

import (
	"encoding/json"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hyperv/callback"
	"hyperv-facade/hyperv/protocol"
	"hyperv-facade/hyperv/workerpool/taskreceiver"
)

const interruptReason = "系统中断，任务失去控制"

func Run() {
	interruptTaskCallback()
}

// interruptTaskCallback
// 查询上次运行未完成的请求，回调通知请求已中断
func interruptTaskCallback() {
	req := taskreceiver.GetReceivedReq()
	for requestID, p := range req {
		logging.L().Debugf("请求[%s](%s)在服务停止前未完成", requestID, taskreceiver.TypeOf(requestID))
		var r struct {
			Callback protocol.CallbackReq `json:"callback"`
		}
		if err := json.Unmarshal([]byte(p), &r); err != nil {
			logging.L().Errorf("解析请求[%s]内容出错: %v", requestID, err)
			taskreceiver.Cancel(requestID, "请求内容无法解析")
			continue
		}

		callback.NewCallbacker(r.Callback).CallbackErr(requestID, nil, errs.Newf(errs.OperationFailed, "startup", interruptReason))
		taskreceiver.Cancel(requestID, interruptReason)
	}
}
