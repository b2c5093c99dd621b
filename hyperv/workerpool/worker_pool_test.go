package workerpool

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/app/cache"
	"hyperv-facade/config"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl/simhost"
	"sync"
	"testing"
	"time"
)

func newAPI() (*simhost.Host, *helper.API) {
	host := simhost.NewDemo("hv-node1")
	api := helper.NewAPI("test", host)
	api.Tracker.Interval = time.Millisecond
	return host, api
}

func TestMain(m *testing.M) {
	cache.Setup()
	config.G.Hyperv.RoutineCount.Operation = 2
	config.G.Hyperv.RoutineCount.Deployment = 1
	m.Run()
}

func TestGet_samePool(t *testing.T) {
	p1, err := Get("host-a", WorkerTypeOperation)
	require.NoError(t, err)
	p2, err := Get("host-a", WorkerTypeOperation)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 2, p1.Cap())

	p3, err := Get("host-a", WorkerTypeDeployment)
	require.NoError(t, err)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 1, p3.Cap())

	_, err = Get("host-a", WorkerType("other"))
	assert.Error(t, err)
}

func TestGet_concurrent(t *testing.T) {
	var wg sync.WaitGroup
	pools := make(chan interface{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _ := Get("host-b", WorkerTypeOperation)
			pools <- p
		}()
	}
	wg.Wait()
	close(pools)
	first := <-pools
	for p := range pools {
		assert.Same(t, first, p)
	}
}

func TestAddTask(t *testing.T) {
	done := make(chan struct{})
	require.NoError(t, AddTask("host-c", WorkerTypeOperation, func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("任务未执行")
	}
	assert.Error(t, AddTask("host-c", WorkerType("other"), func() {}))
}

func TestOperator_powerOnAndOff(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()

	o, err := GetVirtualMachineOperator(ctx, api, "db01")
	require.NoError(t, err)
	require.NoError(t, o.PowerOn(ctx))
	assert.Equal(t, simhost.VMRunning, host.VMState("db01"))

	config.G.Hyperv.Default.Operation.ShutdownFirst = true
	defer func() { config.G.Hyperv.Default.Operation.ShutdownFirst = false }()
	host.ResetCounters()
	require.NoError(t, o.PowerOff(ctx))
	assert.Equal(t, simhost.VMOff, host.VMState("db01"))
	assert.Equal(t, 1, host.Calls("InitiateShutdown"))
	assert.Equal(t, 0, host.Calls("RequestStateChange"))
}

func TestOperator_powerOffForce(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()

	o, err := GetVirtualMachineOperator(ctx, api, "web01")
	require.NoError(t, err)
	host.ResetCounters()
	require.NoError(t, o.PowerOff(ctx))
	assert.Equal(t, simhost.VMOff, host.VMState("web01"))
	assert.Equal(t, 0, host.Calls("InitiateShutdown"))
}

func TestOperator_invalidState(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()

	o, err := GetVirtualMachineOperator(ctx, api, "db01")
	require.NoError(t, err)
	host.ResetCounters()
	err = o.Pause(ctx)
	assert.True(t, errs.IsKind(err, errs.InvalidState))
	assert.Equal(t, 0, host.Calls("RequestStateChange"))

	_, err = GetVirtualMachineOperator(ctx, api, "missing")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestOperator_destroyRunning(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()

	o, err := GetVirtualMachineOperator(ctx, api, "web01")
	require.NoError(t, err)
	require.NoError(t, o.Destroy(ctx))
	assert.Equal(t, 1, host.Calls("DestroySystem"))
	assert.Equal(t, uint32(0), host.VMState("web01"))
}

func TestDeployer_verify(t *testing.T) {
	_, api := newAPI()
	d := NewVirtualMachineDeployer(api)
	d.Parameter = DeployParameter{Name: " ", Generation: 3, MemoryMB: 31}
	assert.Len(t, d.Verify(), 4)

	d.Parameter = DeployParameter{
		Name:           "app01",
		MemoryMB:       1024,
		ProcessorCount: 2,
		VhdPath:        `C:\VMs\a.vhdx`,
		NewDisk:        &NewDisk{Path: `C:\VMs\b.img`},
	}
	assert.Len(t, d.Verify(), 2)
}

func TestDeployer_deploy(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	powerOn := true

	d := NewVirtualMachineDeployer(api)
	d.Parameter = DeployParameter{
		Name:           "app01",
		MemoryMB:       1024,
		ProcessorCount: 2,
		NewDisk:        &NewDisk{Path: `C:\VMs\app01.vhdx`, Size: "20GB"},
		PowerOn:        &powerOn,
	}
	require.Empty(t, d.Verify())
	require.NoError(t, d.Deploy(ctx))
	assert.NotEmpty(t, d.NewMachineID())
	assert.Equal(t, simhost.VMRunning, host.VMState("app01"))

	disks, err := d.NewMachine().Disks(ctx)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Equal(t, `C:\VMs\app01.vhdx`, disks[0].Path)
}

func TestDeployer_duplicate(t *testing.T) {
	_, api := newAPI()
	d := NewVirtualMachineDeployer(api)
	d.Parameter = DeployParameter{Name: "web01", MemoryMB: 1024, ProcessorCount: 1}
	err := d.Deploy(context.Background())
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
	assert.Empty(t, d.NewMachineID())
}
