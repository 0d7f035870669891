package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	cron "github.com/robfig/cron/v3"
)

// ServerSyncer 定时同步所需的服务能力
type ServerSyncer interface {
	GetServers() ([]*model.Server, error)
	SyncInbounds(ctx context.Context, server *model.Server) (*service.SyncResult, error)
}

// ServerSyncJob 按计划对所有服务器做一次入站同步
type ServerSyncJob struct {
	syncer   ServerSyncer
	cron     *cron.Cron
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	entryId cron.EntryID
	running sync.WaitGroup
}

// ServerSyncJobName 是定时同步任务在 Manager 中的名称
const ServerSyncJobName = "ServerSyncJob"

var (
	_ Job    = (*ServerSyncJob)(nil)
	_ Runner = (*ServerSyncJob)(nil)
)

func NewServerSyncJob(syncer ServerSyncer, c *cron.Cron, schedule string, timeout time.Duration) *ServerSyncJob {
	return &ServerSyncJob{
		syncer:   syncer,
		cron:     c,
		schedule: schedule,
		timeout:  timeout,
	}
}

func (j *ServerSyncJob) Name() string {
	return ServerSyncJobName
}

func (j *ServerSyncJob) Start() error {
	if j.cron == nil {
		return errors.New("server sync job: cron is not initialized")
	}
	if j.schedule == "" {
		return errors.New("server sync job: empty schedule")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.entryId != 0 {
		return nil
	}
	id, err := j.cron.AddJob(j.schedule, j)
	if err != nil {
		return err
	}
	j.entryId = id
	logger.Infof("server sync scheduled at %q", j.schedule)
	return nil
}

func (j *ServerSyncJob) Stop() error {
	j.mu.Lock()
	if j.entryId != 0 && j.cron != nil {
		j.cron.Remove(j.entryId)
		j.entryId = 0
	}
	j.mu.Unlock()
	j.running.Wait()
	return nil
}

// Run 逐台同步；正在同步中的服务器跳过，单台失败不影响其它服务器
func (j *ServerSyncJob) Run() {
	j.running.Add(1)
	defer j.running.Done()
	defer common.Recover("[ServerSyncJob] panic during run")

	servers, err := j.syncer.GetServers()
	if err != nil {
		logger.Warning("server sync job: list servers failed:", err)
		return
	}

	var synced, skipped, failed int
	for _, server := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		_, err := j.syncer.SyncInbounds(ctx, server)
		cancel()

		switch {
		case err == nil:
			synced++
		case errors.Is(err, common.ErrSyncInProgress):
			skipped++
			logger.Debugf("server sync job: server %d is already syncing", server.Id)
		default:
			failed++
			logger.Warningf("server sync job: server %d (%s) failed: %v", server.Id, server.Name, err)
		}
	}
	logger.Infof("server sync job finished: %d synced, %d skipped, %d failed", synced, skipped, failed)
}
