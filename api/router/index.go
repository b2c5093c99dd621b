package router

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv/workerpool/taskreceiver"
	"net/http"
	"sort"
)

// Index 列出尚未完成的请求
func Index(c *gin.Context) {
	r := e.Gin{C: c}
	r.C.String(http.StatusOK, "This is Hyper-V Facade API \n"+requests())
}

func requests() string {
	all := taskreceiver.GetReceivedReq()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s := " 请求 ｜ 类型 ｜ 参数"
	for _, id := range ids {
		s += fmt.Sprintf("\n %s | %s | %s", id, taskreceiver.TypeOf(id), all[id])
	}
	return s
}
