package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
)

type MaintenanceReq struct {
	On bool `json:"on"`
}

type PathQuery struct {
	Path string `form:"path" valid:"Required"`
}

// GetCluster
// @Summary      集群概要
// @Description  当前连接所在集群的节点、组与资源数量
// @Tags         集群
// @Accept       json
// @Produce      json
// @Success      200  {object}  e.Response{data=protocol.ClusterInfo}
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      404  {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster [get]
func GetCluster(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.ClusterInfo(c)
	response(&r, info, err)
}

// ConnectCluster
// @Summary      连接集群
// @Description  按名称打开集群，名称与主机所在集群不一致时返回4040
// @Tags         集群
// @Accept       json
// @Produce      json
// @Param        name  path      string  true  "集群名称"
// @Success      200   {object}  e.Response{data=protocol.ClusterInfo}
// @Failure      400   {string}  json  "{"code":"4000","message":"失败"}"
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/connect/{name} [get]
func ConnectCluster(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.ConnectCluster(c, c.Param("name"))
	response(&r, info, err)
}

// QueryNodes
// @Summary      节点查询
// @Tags         集群
// @Produce      json
// @Success      200  {object}  e.Response{data=[]protocol.NodeInfo}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/nodes [get]
func QueryNodes(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	nodes, err := hv.QueryNodes(c)
	response(&r, nodes, err)
}

// GetNode
// @Summary      节点详情
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "节点名称"
// @Success      200   {object}  e.Response{data=protocol.NodeInfo}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/nodes/{name} [get]
func GetNode(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	node, err := hv.GetNode(c, c.Param("name"))
	response(&r, node, err)
}

// PauseNode
// @Summary      暂停节点
// @Description  节点已暂停时返回Skipped
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "节点名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      409   {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/nodes/{name}/pause [post]
func PauseNode(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.PauseNode(c, c.Param("name"))
	response(&r, res, err)
}

// ResumeNode
// @Summary      恢复节点
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "节点名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      409   {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/nodes/{name}/resume [post]
func ResumeNode(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.ResumeNode(c, c.Param("name"))
	response(&r, res, err)
}

// QueryGroups
// @Summary      组查询
// @Tags         集群
// @Produce      json
// @Success      200  {object}  e.Response{data=[]protocol.GroupInfo}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/groups [get]
func QueryGroups(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	groups, err := hv.QueryGroups(c)
	response(&r, groups, err)
}

// GetGroup
// @Summary      组详情
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "组名称"
// @Success      200   {object}  e.Response{data=protocol.GroupInfo}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/groups/{name} [get]
func GetGroup(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	group, err := hv.GetGroup(c, c.Param("name"))
	response(&r, group, err)
}

// OnlineGroup
// @Summary      组上线
// @Description  宿主机返回997时结果为Accepted，上线在后台继续
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "组名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      409   {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/groups/{name}/online [post]
func OnlineGroup(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.OnlineGroup(c, c.Param("name"))
	response(&r, res, err)
}

// OfflineGroup
// @Summary      组下线
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "组名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      409   {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/groups/{name}/offline [post]
func OfflineGroup(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.OfflineGroup(c, c.Param("name"))
	response(&r, res, err)
}

// MoveGroup
// @Summary      组迁移
// @Description  组已在目标节点时返回Skipped；组不在线时返回4090
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "组名称"
// @Param        node  path      string  true  "目标节点"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Failure      409   {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/groups/{name}/move/{node} [post]
func MoveGroup(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.MoveGroup(c, c.Param("name"), c.Param("node"))
	response(&r, res, err)
}

// QueryResources
// @Summary      资源查询
// @Tags         集群
// @Produce      json
// @Success      200  {object}  e.Response{data=[]protocol.ResourceInfo}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/resources [get]
func QueryResources(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	resources, err := hv.QueryResources(c)
	response(&r, resources, err)
}

// GetResource
// @Summary      资源详情
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "资源名称"
// @Success      200   {object}  e.Response{data=protocol.ResourceInfo}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/resources/{name} [get]
func GetResource(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	resource, err := hv.GetResource(c, c.Param("name"))
	response(&r, resource, err)
}

// OnlineResource
// @Summary      资源上线
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "资源名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/resources/{name}/online [post]
func OnlineResource(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.OnlineResource(c, c.Param("name"))
	response(&r, res, err)
}

// OfflineResource
// @Summary      资源下线
// @Tags         集群
// @Produce      json
// @Param        name  path      string  true  "资源名称"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/resources/{name}/offline [post]
func OfflineResource(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.OfflineResource(c, c.Param("name"))
	response(&r, res, err)
}

// QuerySharedVolumes
// @Summary      CSV查询
// @Tags         集群
// @Produce      json
// @Success      200  {object}  e.Response{data=[]clus.SharedVolume}
// @Security     ApiKeyAuth
// @Router       /v1/cluster/csv [get]
func QuerySharedVolumes(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	volumes, err := hv.SharedVolumes(c)
	response(&r, volumes, err)
}

// CheckSharedVolumePath
// @Summary      路径是否位于CSV
// @Tags         集群
// @Produce      json
// @Param        path  query     string  true  "文件或目录路径"
// @Success      200   {object}  e.Response{data=protocol.SharedVolumePathCheck}
// @Failure      400   {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/csv/check_path [get]
func CheckSharedVolumePath(c *gin.Context) {
	r := e.Gin{C: c}
	q := PathQuery{}
	if !bindReq(&r, &q) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.CheckSharedVolumePath(c, q.Path)
	response(&r, res, err)
}

// SetSharedVolumeMaintenance
// @Summary      CSV维护模式
// @Tags         集群
// @Accept       json
// @Produce      json
// @Param        name  path      string             true  "CSV资源名称"
// @Param        c     body      v1.MaintenanceReq  true  "是否开启"
// @Success      200   {object}  e.Response{data=protocol.OperationResult}
// @Failure      400   {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/cluster/csv/{name}/maintenance [post]
func SetSharedVolumeMaintenance(c *gin.Context) {
	r := e.Gin{C: c}
	p := MaintenanceReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	res, err := hv.SetSharedVolumeMaintenance(c, c.Param("name"), p.On)
	response(&r, res, err)
}
