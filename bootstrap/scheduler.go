package bootstrap

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/job"

	cron "github.com/robfig/cron/v3"
)

// RegisterJobs 注册所有后台任务到 JobManager
// sync.enabled 为 false 或 sync.schedule 为空时不注册定时同步
func RegisterJobs(jobManager *job.Manager, app *App, c *cron.Cron) {
	schedule := config.GetSyncSchedule()
	if !config.IsSyncEnabled() || schedule == "" {
		logger.Info("periodic server sync is disabled")
		return
	}

	// 入站定时同步任务，每台服务器的超时为面板超时的三倍
	jobManager.Register(job.NewServerSyncJob(app.ServerService, c, schedule, config.GetPanelTimeout()*3))
}
