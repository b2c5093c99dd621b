package job

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"hyperv-facade/hostctl/simhost"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	o, err := Decode("online", "r1", hostctl.StatusIOPending)
	require.NoError(t, err)
	assert.Equal(t, Accepted, o)

	o, err = Decode("online", "r1", hostctl.StatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, Completed, o)

	_, err = Decode("online", "r1", 5023)
	assert.True(t, errs.IsKind(err, errs.OperationFailed))
	assert.Equal(t, uint32(5023), errs.CodeOf(err))
}

func TestDecodeState(t *testing.T) {
	assert.Equal(t, Running, DecodeState(4))
	assert.Equal(t, Succeeded, DecodeState(7))
	assert.Equal(t, Failed, DecodeState(10))
	assert.Equal(t, Unknown, DecodeState(42))
}

func fastTracker(h hostctl.Management) *Tracker {
	tr := NewTracker(h)
	tr.Interval = time.Millisecond
	tr.MaxInterval = 4 * time.Millisecond
	return tr
}

func TestSubmitAndWait(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	sim.SetJobPolls(3)
	vm := sim.AddVM("vm1", simhost.VMOff)

	sub, err := Submit(ctx, sim, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": simhost.VMRunning})
	require.NoError(t, err)
	require.False(t, sub.Immediate())
	assert.Equal(t, Accepted, sub.Outcome())
	assert.Equal(t, Pending, sub.Job.Status)

	require.NoError(t, fastTracker(sim).Wait(ctx, sub.Job, time.Second))
	assert.Equal(t, Succeeded, sub.Job.Status)
	assert.Equal(t, simhost.VMRunning, sim.VMState("vm1"))
}

func TestSubmit_immediateAndRejected(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	sim.AddVhd(`C:\a.vhdx`, 3, 1<<30, "")
	enum, _ := sim.ExecQuery(ctx, "SELECT * FROM Msvm_ImageManagementService")
	size, _ := sim.EnumProbe(ctx, enum, 0)
	svc, _ := sim.EnumFetch(ctx, enum, 0, size)
	_ = sim.CloseEnum(enum)

	sub, err := Submit(ctx, sim, svc, "GetVirtualHardDiskSettingData", hostctl.Params{"Path": `C:\a.vhdx`})
	require.NoError(t, err)
	assert.True(t, sub.Immediate())
	assert.NotNil(t, sub.Out.Object("SettingData"))

	_, err = Submit(ctx, sim, svc, "GetVirtualHardDiskSettingData", hostctl.Params{"Path": `C:\missing.vhdx`})
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.Equal(t, hostctl.ReturnFileNotFound, errs.CodeOf(err))
}

func TestWait_failedJobKeepsCodeAndDescription(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	vm := sim.AddVM("vm1", simhost.VMRunning)
	sim.FailJob("RequestStateChange", hostctl.ReturnOutOfMemory, "not enough memory")

	sub, err := Submit(ctx, sim, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": simhost.VMSaved})
	require.NoError(t, err)
	err = fastTracker(sim).Wait(ctx, sub.Job, time.Second)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.CapacityExceeded))
	assert.Equal(t, hostctl.ReturnOutOfMemory, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "not enough memory")
}

func TestWait_timeout(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	sim.SetJobPolls(1 << 20)
	vm := sim.AddVM("vm1", simhost.VMOff)
	sub, err := Submit(ctx, sim, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": simhost.VMRunning})
	require.NoError(t, err)

	start := time.Now()
	err = fastTracker(sim).Wait(ctx, sub.Job, 30*time.Millisecond)
	assert.True(t, errs.IsKind(err, errs.Timeout))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, Running, sub.Job.Status)
}

func TestWait_boundedPolling(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	sim.SetJobPolls(1 << 20)
	vm := sim.AddVM("vm1", simhost.VMOff)
	sub, _ := Submit(ctx, sim, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": simhost.VMRunning})

	tr := NewTracker(sim)
	tr.Interval = 10 * time.Millisecond
	tr.MaxInterval = 20 * time.Millisecond
	sim.ResetCounters()
	_ = tr.Wait(ctx, sub.Job, 100*time.Millisecond)
	assert.LessOrEqual(t, sim.Counters().Gets, 12)
}

func TestWait_cancelled(t *testing.T) {
	sim := simhost.New("hv01")
	sim.SetJobPolls(1 << 20)
	vm := sim.AddVM("vm1", simhost.VMOff)
	sub, _ := Submit(context.Background(), sim, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": simhost.VMRunning})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastTracker(sim).Wait(ctx, sub.Job, time.Second)
	assert.Error(t, err)
	assert.False(t, errs.IsKind(err, errs.Timeout))
}
