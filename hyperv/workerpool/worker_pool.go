package workerpool

import (
	"fmt"
	"github.com/panjf2000/ants/v2"
	"hyperv-facade/app/cache"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"sync"
	"time"
)

type WorkerType string

const (
	WorkerTypeOperation  = WorkerType("operation")
	WorkerTypeDeployment = WorkerType("deployment")
)

var (
	receiveTaskPool *ants.Pool
	poolMu          sync.Mutex
)

func init() {
	receiveTaskPool, _ = ants.NewPool(10000,
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(0))
}

// Get 每个主机、每种类型一个工作池
func Get(hostID string, t WorkerType) (*ants.Pool, error) {
	k := poolKey(hostID, t)
	if p, exist := cache.INST.Get(k); exist {
		return p.(*ants.Pool), nil
	}
	return newPool(hostID, t)
}

// AddTask 任务先进入接收池，再转交到主机对应的工作池排队执行
func AddTask(hostID string, t WorkerType, task func()) error {
	if _, err := size(t); err != nil {
		return err
	}
	return receiveTaskPool.Submit(func() {
		p, err := Get(hostID, t)
		if err != nil {
			logging.L().Error("获取工作池失败： ", err)
			return
		}
		if err = p.Submit(task); err != nil {
			logging.L().Error("添加任务失败： ", err)
		}
	})
}

func newPool(hostID string, t WorkerType) (*ants.Pool, error) {
	poolMu.Lock()
	defer poolMu.Unlock()

	k := poolKey(hostID, t)
	if p, exist := cache.INST.Get(k); exist {
		return p.(*ants.Pool), nil
	}

	n, err := size(t)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(n,
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(0),
		ants.WithExpiryDuration(10*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("创建工作池[%s]失败: %v", k, err)
	}
	logging.L().Debug(fmt.Sprintf("创建工作池[%s]，大小%d", k, n))
	cache.INST.Set(k, pool, -1)
	return pool, nil
}

func size(t WorkerType) (int, error) {
	var n int
	switch t {
	case WorkerTypeOperation:
		n = config.G.Hyperv.RoutineCount.Operation
	case WorkerTypeDeployment:
		n = config.G.Hyperv.RoutineCount.Deployment
	default:
		return 0, fmt.Errorf("不识别的工作池类型[%s]", t)
	}
	if n <= 0 {
		n = 1
	}
	return n, nil
}

func poolKey(hostID string, t WorkerType) string {
	return fmt.Sprintf("%s::%s", hostID, t)
}
