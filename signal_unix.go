//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/job"
)

// setupSignalHandler 注册信号监听（Unix版包含 SIGUSR2）
func setupSignalHandler(sigCh chan os.Signal) {
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt, syscall.SIGUSR2)
}

// handleCustomSignal 处理平台特定的信号，SIGUSR2 立即触发一轮入站同步
// 返回 true 表示信号已被处理，无需进一步操作
func handleCustomSignal(sig os.Signal, jobs *job.Manager) bool {
	if sig == syscall.SIGUSR2 {
		logger.Info("Received SIGUSR2 signal. Triggering ServerSyncJob manually...")
		if jobs == nil || !jobs.Trigger(job.ServerSyncJobName) {
			logger.Warning("ServerSyncJob is not available, periodic sync may be disabled")
		}
		return true
	}
	return false
}
