package taskreceiver

import (
	"fmt"
	"github.com/google/uuid"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/db/badgerdb"
	"hyperv-facade/hyperv/workerpool"
	"strings"
)

// Receive 持久化请求内容，返回请求ID。服务中断后startup据此回调未完成的请求
func Receive(reqType workerpool.WorkerType, req interface{}) string {
	ID := generateReqID(reqType)
	reqJson := utils.ToJson(req)
	logging.L().Debugf("收到一个请求，ID: %s, Req: %s", ID, reqJson)
	badgerdb.Set(ID, reqJson)
	return ID
}

func Done(ID string) {
	logging.L().Debug(fmt.Sprintf("请求[%s]完成", ID))
	_ = badgerdb.Del(ID)
}

func Cancel(ID string, reason string) {
	logging.L().Debug(fmt.Sprintf("请求[%s]取消，原因: %s", ID, reason))
	_ = badgerdb.Del(ID)
}

func GetReceivedReq() map[string]string {
	return badgerdb.GetAll()
}

// TypeOf 请求ID中的工作类型
func TypeOf(ID string) workerpool.WorkerType {
	i := strings.Index(ID, ":")
	if i < 0 {
		return ""
	}
	return workerpool.WorkerType(ID[:i])
}

func generateReqID(reqType workerpool.WorkerType) string {
	return fmt.Sprintf("%s:%s", string(reqType), uuid.NewString())
}
