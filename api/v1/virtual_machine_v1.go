package v1

import (
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hyperv"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/callback"
	"hyperv-facade/hyperv/protocol"
	"hyperv-facade/hyperv/workerpool"
	"hyperv-facade/hyperv/workerpool/taskreceiver"
	"net/http"
)

type DeployReq struct {
	Parameter workerpool.DeployParameter `json:"config"  valid:"Required"`

	CallBack protocol.CallbackReq `json:"callback,omitempty"`
}

type OperationReq struct {
	IDs []string `json:"ids" valid:"Required;MinSize(1)"`

	CallBack protocol.CallbackReq `json:"callback"`
}

type OperationCallBackRes struct {
	Success  []string          `json:"success,omitempty"`
	NotFound []string          `json:"not_found,omitempty"`
	Failed   []OperationFailed `json:"failed,omitempty"`
}

type DeploymentCallBackRes struct {
	IsSuccess bool        `json:"is_success"`
	Message   *string     `json:"message,omitempty"`
	Instance  interface{} `json:"instance,omitempty"`
}

type OperationFailed struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type OperationRes struct {
	RequestID string `json:"requestId"`
}

type DeployRes struct {
	RequestID string `json:"requestId"`
}

type RenameReq struct {
	ID      string `json:"id" valid:"Required"`
	NewName string `json:"newName" valid:"Required"`
}

type ExportReq struct {
	ID   string `json:"id" valid:"Required"`
	Path string `json:"path" valid:"Required"`
}

type ReconfigureReq struct {
	ID string `json:"id" valid:"Required"`
	protocol.VirtualMachineConfig
}

// VmFileReq 虚拟机与磁盘或ISO路径
type VmFileReq struct {
	ID   string `json:"id" valid:"Required"`
	Path string `json:"path" valid:"Required"`
}

type operation func(*workerpool.VirtualMachineOperator, context.Context) error

// CreateVirtualMachine
// @Summary      创建虚拟机
// @Description  创建虚拟机，完成后回调新虚拟机信息
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.DeployReq  true  "创建参数"
// @Success      202  {object}  e.Response{data=v1.DeployRes}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines [post]
func CreateVirtualMachine(c *gin.Context) {
	r := e.Gin{C: c}
	p := DeployReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}

	vmDeployer := workerpool.NewVirtualMachineDeployer(hv.Api)
	vmDeployer.Parameter = p.Parameter
	if msg := vmDeployer.Verify(); len(msg) > 0 {
		r.ResponseError(http.StatusBadRequest, e.BadRequest, msg)
		return
	}

	res := DeployRes{}
	res.RequestID = taskreceiver.Receive(workerpool.WorkerTypeDeployment, p)
	vmDeployer.DeployID = res.RequestID
	err := hv.AddTask(workerpool.WorkerTypeDeployment, func() {
		defer taskreceiver.Done(res.RequestID)
		ctx, cancel := hyperv.JobContext()
		defer cancel()
		var callBack = p.CallBack
		callBack.RequestID = vmDeployer.DeployID
		err := vmDeployer.Deploy(ctx)
		hv.Cache.Clean(cache.VirtualMachines)
		if err != nil {
			message := err.Error()
			deploymentCallBack(callBack, DeploymentCallBackRes{
				IsSuccess: false,
				Message:   &message,
			})
			return
		}
		instanceInfo, err := hv.GetVirtualMachine(ctx, vmDeployer.NewMachineID())
		if err != nil {
			logging.L().Errorf("读取新建虚拟机[%s]信息失败: %v", vmDeployer.NewMachineID(), err)
		}
		deploymentCallBack(callBack, DeploymentCallBackRes{
			IsSuccess: true,
			Instance:  instanceInfo,
		})
	})
	if err != nil {
		logging.L().Error("创建部署任务失败: ", err)
		taskreceiver.Cancel(res.RequestID, "任务创建失败")
		r.ResponseOk(http.StatusInternalServerError, e.SystemError, nil)
	} else {
		r.ResponseOk(http.StatusAccepted, e.Accepted, res)
	}
}

// DeleteVirtualMachines
// @Summary      删除虚拟机
// @Description  未关机的虚拟机先强制关机再删除
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "删除虚拟机参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines [delete]
func DeleteVirtualMachines(c *gin.Context) {
	batchOperation(c, "删除", (*workerpool.VirtualMachineOperator).Destroy)
}

// DeleteVirtualMachine
// @Summary      删除单个虚拟机
// @Description  同步等待删除完成
// @Tags         虚拟机
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name} [delete]
func DeleteVirtualMachine(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	ctx, cancel := hyperv.JobContext()
	defer cancel()
	machine, err := workerpool.GetVirtualMachineOperator(ctx, hv.Api, c.Param("name"))
	if err == nil {
		err = machine.Destroy(ctx)
		hv.Cache.Clean(cache.VirtualMachines)
	}
	response(&r, nil, err)
}

// VirtualMachinePowerOn
// @Summary      开机
// @Description  开机
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "开机参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/power_on [post]
func VirtualMachinePowerOn(c *gin.Context) {
	batchOperation(c, "开机", (*workerpool.VirtualMachineOperator).PowerOn)
}

// VirtualMachinePowerOff
// @Summary      关闭电源
// @Description  配置了shutdownFirst时先尝试正常关机
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "关闭电源参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/power_off [post]
func VirtualMachinePowerOff(c *gin.Context) {
	batchOperation(c, "关闭电源", (*workerpool.VirtualMachineOperator).PowerOff)
}

// VirtualMachineShutdown
// @Summary      关闭操作系统
// @Description  通过集成服务正常关机
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "关闭操作系统参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/shutdown [post]
func VirtualMachineShutdown(c *gin.Context) {
	batchOperation(c, "关闭操作系统", (*workerpool.VirtualMachineOperator).Shutdown)
}

// VirtualMachinePause
// @Summary      暂停
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "暂停参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/pause [post]
func VirtualMachinePause(c *gin.Context) {
	batchOperation(c, "暂停", (*workerpool.VirtualMachineOperator).Pause)
}

// VirtualMachineResume
// @Summary      继续运行
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "继续运行参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/resume [post]
func VirtualMachineResume(c *gin.Context) {
	batchOperation(c, "继续运行", (*workerpool.VirtualMachineOperator).Resume)
}

// VirtualMachineSave
// @Summary      保存状态
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "保存参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/save [post]
func VirtualMachineSave(c *gin.Context) {
	batchOperation(c, "保存", (*workerpool.VirtualMachineOperator).Save)
}

// VirtualMachineReset
// @Summary      重置
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "重置参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/reset [post]
func VirtualMachineReset(c *gin.Context) {
	batchOperation(c, "重置", (*workerpool.VirtualMachineOperator).Reset)
}

// VirtualMachineHibernate
// @Summary      休眠
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.OperationReq  true  "休眠参数"
// @Success      202  {object}  e.Response{data=v1.OperationRes}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/hibernate [post]
func VirtualMachineHibernate(c *gin.Context) {
	batchOperation(c, "休眠", (*workerpool.VirtualMachineOperator).Hibernate)
}

// batchOperation 请求持久化后提交到操作池，逐个执行并回调结果
func batchOperation(c *gin.Context, name string, op operation) {
	r := e.Gin{C: c}
	p := OperationReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}

	res := OperationRes{}
	res.RequestID = taskreceiver.Receive(workerpool.WorkerTypeOperation, p)
	err := hv.AddTask(workerpool.WorkerTypeOperation, func() {
		defer taskreceiver.Done(res.RequestID)
		var success, notFound []string
		var failed []OperationFailed
		var callBack = p.CallBack
		for _, ID := range p.IDs {
			err := runOperation(hv, ID, op)
			switch {
			case err == nil:
				success = append(success, ID)
			case errs.IsKind(err, errs.NotFound):
				notFound = append(notFound, ID)
			default:
				logging.L().Error(fmt.Sprintf("虚拟机[%s]%s失败: ", ID, name), err)
				failed = append(failed, OperationFailed{
					ID:    ID,
					Error: err.Error(),
				})
			}
		}
		hv.Cache.Clean(cache.VirtualMachines)
		callBack.RequestID = res.RequestID
		operationCallBack(callBack, success, notFound, failed)
	})

	if err != nil {
		logging.L().Error(fmt.Sprintf("创建%s任务失败: ", name), err)
		taskreceiver.Cancel(res.RequestID, "任务创建失败")
		r.ResponseOk(http.StatusInternalServerError, e.SystemError, nil)
	} else {
		r.ResponseOk(http.StatusAccepted, e.Accepted, res)
	}
}

func runOperation(hv *hyperv.HyperV, ID string, op operation) error {
	ctx, cancel := hyperv.JobContext()
	defer cancel()
	machine, err := workerpool.GetVirtualMachineOperator(ctx, hv.Api, ID)
	if err != nil {
		return err
	}
	return op(machine, ctx)
}

// QueryVirtualMachines
// @Summary      查询虚拟机
// @Description  列表只包含状态，按名称与状态过滤
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        name   query     []string  false  "虚拟机名称"
// @Param        state  query     string    false  "状态，如Running、Off"
// @Success      200    {object}  e.Response{data=[]protocol.VirtualMachineBrief}
// @Failure      400    {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401    {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500    {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines [get]
func QueryVirtualMachines(c *gin.Context) {
	r := e.Gin{C: c}
	query := protocol.VirtualMachineQuery{}
	if !bindReq(&r, &query) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	vms, err := hv.QueryVirtualMachines(c, query)
	if err == nil && len(vms) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, vms, err)
}

// GetVirtualMachine
// @Summary      虚拟机详情
// @Description  状态、代数、内存、处理器、磁盘与光驱
// @Tags         虚拟机
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response{data=protocol.VirtualMachineInfo}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name} [get]
func GetVirtualMachine(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.GetVirtualMachine(c, c.Param("name"))
	response(&r, info, err)
}

// VirtualMachineRename
// @Summary      重命名
// @Description  重命名
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.RenameReq  true  "请求参数"
// @Success      200  {object}  e.Response
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/rename [post]
func VirtualMachineRename(c *gin.Context) {
	r := e.Gin{C: c}
	p := RenameReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.RenameVirtualMachine(c, p.ID, p.NewName))
}

// VirtualMachineExport
// @Summary      导出
// @Description  导出到主机上的目录
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.ExportReq  true  "请求参数"
// @Success      200  {object}  e.Response
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/export [post]
func VirtualMachineExport(c *gin.Context) {
	r := e.Gin{C: c}
	p := ExportReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.ExportVirtualMachine(c, p.ID, p.Path))
}

// ModifyVirtualMachineConfigure
// @Summary      修改虚拟机配置
// @Description  修改内存、处理器数量与备注，内存与处理器要求虚拟机已关机
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.ReconfigureReq  true  "修改虚拟机配置参数"
// @Success      200  {object}  e.Response
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      409  {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/reconfigure [post]
func ModifyVirtualMachineConfigure(c *gin.Context) {
	r := e.Gin{C: c}
	p := ReconfigureReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.ReconfigureVirtualMachine(c, p.ID, p.VirtualMachineConfig))
}

// AttachVirtualMachineDisk
// @Summary      挂载磁盘
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmFileReq  true  "虚拟机与磁盘路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/disks/attach [post]
func AttachVirtualMachineDisk(c *gin.Context) {
	vmFileAction(c, (*hyperv.HyperV).AttachDisk)
}

// DetachVirtualMachineDisk
// @Summary      卸载磁盘
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmFileReq  true  "虚拟机与磁盘路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/disks/detach [post]
func DetachVirtualMachineDisk(c *gin.Context) {
	vmFileAction(c, (*hyperv.HyperV).DetachDisk)
}

// MountVirtualMachineIso
// @Summary      插入光盘
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmFileReq  true  "虚拟机与ISO路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/dvd/mount [post]
func MountVirtualMachineIso(c *gin.Context) {
	vmFileAction(c, (*hyperv.HyperV).MountIso)
}

// EjectVirtualMachineIso
// @Summary      弹出光盘
// @Tags         虚拟机
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmFileReq  true  "虚拟机与ISO路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/dvd/eject [post]
func EjectVirtualMachineIso(c *gin.Context) {
	vmFileAction(c, (*hyperv.HyperV).EjectIso)
}

func vmFileAction(c *gin.Context, f func(*hyperv.HyperV, context.Context, string, string) error) {
	r := e.Gin{C: c}
	p := VmFileReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, f(hv, c, p.ID, p.Path))
}

func operationCallBack(c protocol.CallbackReq, success, notFound []string, failed []OperationFailed) {
	cb := callback.NewCallbacker(c)
	cb.CallbackArr(c.RequestID, OperationCallBackRes{
		Success:  success,
		NotFound: notFound,
		Failed:   failed,
	})
}

func deploymentCallBack(c protocol.CallbackReq, res DeploymentCallBackRes) {
	cb := callback.NewCallbacker(c)
	cb.CallbackObj(c.RequestID, res)
}
