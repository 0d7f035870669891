package job

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	cron "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) GetServers() ([]*model.Server, error) {
	args := m.Called()
	servers, _ := args.Get(0).([]*model.Server)
	return servers, args.Error(1)
}

func (m *mockSyncer) SyncInbounds(ctx context.Context, server *model.Server) (*service.SyncResult, error) {
	args := m.Called(server.Id)
	res, _ := args.Get(0).(*service.SyncResult)
	return res, args.Error(1)
}

func TestServerSyncJob_RunSyncsEveryServer(t *testing.T) {
	servers := []*model.Server{{Id: 1}, {Id: 2}, {Id: 3}}
	syncer := &mockSyncer{}
	syncer.On("GetServers").Return(servers, nil)
	syncer.On("SyncInbounds", 1).Return(&service.SyncResult{}, nil)
	syncer.On("SyncInbounds", 2).Return(nil, fmt.Errorf("%w: server 2", common.ErrSyncInProgress))
	syncer.On("SyncInbounds", 3).Return(nil, common.ErrConnectionFailed)

	NewServerSyncJob(syncer, nil, "@every 1m", time.Second).Run()

	syncer.AssertNumberOfCalls(t, "SyncInbounds", 3)
	syncer.AssertExpectations(t)
}

func TestServerSyncJob_ListFailure(t *testing.T) {
	syncer := &mockSyncer{}
	syncer.On("GetServers").Return(nil, common.ErrInternal)

	NewServerSyncJob(syncer, nil, "@every 1m", time.Second).Run()

	syncer.AssertNotCalled(t, "SyncInbounds", mock.Anything)
}

func TestServerSyncJob_StartStop(t *testing.T) {
	c := cron.New()
	syncer := &mockSyncer{}
	j := NewServerSyncJob(syncer, c, "@every 1h", time.Second)

	require.NoError(t, j.Start())
	require.NoError(t, j.Start())
	assert.Len(t, c.Entries(), 1)

	require.NoError(t, j.Stop())
	assert.Empty(t, c.Entries())
}

func TestServerSyncJob_RejectsBadSchedule(t *testing.T) {
	j := NewServerSyncJob(&mockSyncer{}, cron.New(), "not a schedule", time.Second)
	assert.Error(t, j.Start())

	assert.Error(t, NewServerSyncJob(&mockSyncer{}, nil, "@every 1m", time.Second).Start())
	assert.Error(t, NewServerSyncJob(&mockSyncer{}, cron.New(), "", time.Second).Start())
}

type countingJob struct {
	name    string
	mu      sync.Mutex
	started int
	stopped int
	runs    chan struct{}
}

func (c *countingJob) Start() error { c.mu.Lock(); c.started++; c.mu.Unlock(); return nil }
func (c *countingJob) Stop() error  { c.mu.Lock(); c.stopped++; c.mu.Unlock(); return nil }
func (c *countingJob) Name() string { return c.name }
func (c *countingJob) Run()         { c.runs <- struct{}{} }

// stopOnlyJob 不支持手动执行
type stopOnlyJob struct{}

func (stopOnlyJob) Start() error { return nil }
func (stopOnlyJob) Stop() error  { return nil }
func (stopOnlyJob) Name() string { return "stop-only" }

func TestManager_StartStopAll(t *testing.T) {
	m := NewManager()
	a, b := &countingJob{name: "a"}, &countingJob{name: "b"}
	m.Register(a)
	m.Register(b)

	m.StartAll()
	m.StopAll()

	assert.Equal(t, 1, a.started)
	assert.Equal(t, 1, a.stopped)
	assert.Equal(t, 1, b.started)
	assert.Equal(t, 1, b.stopped)
}

func TestManager_RegisterReplacesSameName(t *testing.T) {
	m := NewManager()
	first, second := &countingJob{name: "x"}, &countingJob{name: "x"}
	m.Register(first)
	m.Register(second)

	got, ok := m.Get("x")
	require.True(t, ok)
	assert.Same(t, second, got)

	m.StartAll()
	assert.Zero(t, first.started)
	assert.Equal(t, 1, second.started)
}

func TestManager_Trigger(t *testing.T) {
	m := NewManager()
	job := &countingJob{name: "runnable", runs: make(chan struct{}, 1)}
	m.Register(job)
	m.Register(stopOnlyJob{})

	require.True(t, m.Trigger("runnable"))
	select {
	case <-job.runs:
	case <-time.After(time.Second):
		t.Fatal("triggered job did not run")
	}

	assert.False(t, m.Trigger("stop-only"))
	assert.False(t, m.Trigger("missing"))
}

func TestManager_TriggerServerSyncJob(t *testing.T) {
	done := make(chan struct{})
	syncer := &mockSyncer{}
	syncer.On("GetServers").Return([]*model.Server{}, nil).Run(func(mock.Arguments) { close(done) })

	m := NewManager()
	m.Register(NewServerSyncJob(syncer, cron.New(), "@every 1h", time.Second))

	require.True(t, m.Trigger(ServerSyncJobName))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("server sync job was not triggered")
	}
}

func TestServerSyncJob_RunRecoversPanic(t *testing.T) {
	syncer := &mockSyncer{}
	syncer.On("GetServers").Return([]*model.Server{{Id: 1}}, nil)
	syncer.On("SyncInbounds", 1).Run(func(mock.Arguments) { panic("boom") })

	j := NewServerSyncJob(syncer, nil, "@every 1m", time.Second)
	assert.NotPanics(t, j.Run)
	assert.NoError(t, j.Stop(), "the running counter is released after a panic")
}
