package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"net/http"
)

type SnapshotReq struct {
	ID   string `json:"id" valid:"Required"`
	Name string `json:"name,omitempty"`
}

type SnapshotActionReq struct {
	ID       string `json:"id" valid:"Required"`
	Snapshot string `json:"snapshot" valid:"Required"`
	Name     string `json:"name,omitempty"`
}

// QuerySnapshots
// @Summary      检查点查询
// @Tags         检查点
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response{data=[]snapshot.Snapshot}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/snapshots [get]
func QuerySnapshots(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	snapshots, err := hv.QuerySnapshots(c, c.Param("name"))
	if err == nil && len(snapshots) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, snapshots, err)
}

// GetSnapshot
// @Summary      检查点详情
// @Tags         检查点
// @Produce      json
// @Param        name      path      string  true  "虚拟机名称或ID"
// @Param        snapshot  path      string  true  "检查点名称或ID"
// @Success      200       {object}  e.Response{data=snapshot.Snapshot}
// @Failure      404       {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/snapshots/{snapshot} [get]
func GetSnapshot(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.GetSnapshot(c, c.Param("name"), c.Param("snapshot"))
	response(&r, s, err)
}

// CreateSnapshot
// @Summary      创建检查点
// @Description  名称为空时使用宿主机生成的名称
// @Tags         检查点
// @Accept       json
// @Produce      json
// @Param        c    body      v1.SnapshotReq  true  "创建参数"
// @Success      200  {object}  e.Response{data=snapshot.Snapshot}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/snapshots [post]
func CreateSnapshot(c *gin.Context) {
	r := e.Gin{C: c}
	p := SnapshotReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.CreateSnapshot(c, p.ID, p.Name)
	response(&r, s, err)
}

// RenameSnapshot
// @Summary      重命名检查点
// @Tags         检查点
// @Accept       json
// @Produce      json
// @Param        c    body      v1.SnapshotActionReq  true  "虚拟机、检查点与新名称"
// @Success      200  {object}  e.Response{data=snapshot.Snapshot}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/snapshots/rename [post]
func RenameSnapshot(c *gin.Context) {
	r := e.Gin{C: c}
	p := SnapshotActionReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.RenameSnapshot(c, p.ID, p.Snapshot, p.Name)
	response(&r, s, err)
}

// ApplySnapshot
// @Summary      恢复检查点
// @Description  运行中的虚拟机需要先关机
// @Tags         检查点
// @Accept       json
// @Produce      json
// @Param        c    body      v1.SnapshotActionReq  true  "虚拟机与检查点"
// @Success      200  {object}  e.Response
// @Failure      409  {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/snapshots/apply [post]
func ApplySnapshot(c *gin.Context) {
	r := e.Gin{C: c}
	p := SnapshotActionReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.ApplySnapshot(c, p.ID, p.Snapshot))
}

// DeleteSnapshot
// @Summary      删除检查点
// @Tags         检查点
// @Produce      json
// @Param        name      path      string  true  "虚拟机名称或ID"
// @Param        snapshot  path      string  true  "检查点名称或ID"
// @Success      200       {object}  e.Response
// @Failure      404       {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/snapshots/{snapshot} [delete]
func DeleteSnapshot(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.DeleteSnapshot(c, c.Param("name"), c.Param("snapshot")))
}
