package bootstrap

import (
	"log"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/sub"
	"github.com/sing-box-orbit/sing-box-orbit-back/web"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/job"
)

// Runtime 封装应用运行时状态
type Runtime struct {
	App        *App
	WebServer  *web.Server
	SubServer  *sub.Server
	JobManager *job.Manager
}

// NewRuntime 创建运行时实例
func NewRuntime(app *App) *Runtime {
	return &Runtime{
		App:        app,
		JobManager: job.NewManager(),
	}
}

// StartWebServer 启动管理接口
func (r *Runtime) StartWebServer() error {
	r.WebServer = web.NewServer(
		r.App.ServerService,
		r.App.ClientService,
		r.App.TemplateService,
	)
	return r.WebServer.Start()
}

// StartSubServer 启动订阅服务器
func (r *Runtime) StartSubServer() error {
	r.SubServer = sub.NewServer(r.App.SubService)
	return r.SubServer.Start()
}

// StartJobs 注册并启动所有后台任务，依赖 Web 服务器的 cron
func (r *Runtime) StartJobs() {
	r.JobManager = job.NewManager()
	RegisterJobs(r.JobManager, r.App, r.WebServer.GetCron())
	r.JobManager.StartAll()
}

// StopAll 停止所有服务
func (r *Runtime) StopAll() {
	r.JobManager.StopAll()

	if r.WebServer != nil {
		_ = r.WebServer.Stop()
	}

	if r.SubServer != nil {
		_ = r.SubServer.Stop()
	}
}

// Restart 重新读取配置并重启所有服务（用于 SIGHUP 信号处理）
func (r *Runtime) Restart() error {
	r.StopAll()

	if err := config.Reload(); err != nil {
		log.Printf("重新读取配置失败，继续使用旧配置: %v", err)
	}
	InitLogger()

	if err := r.StartWebServer(); err != nil {
		return err
	}
	log.Println("Web server restarted successfully.")

	if err := r.StartSubServer(); err != nil {
		return err
	}
	log.Println("Sub server restarted successfully.")

	r.StartJobs()
	return nil
}
