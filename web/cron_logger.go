package web

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
)

// CronLogger 把 cron 的内部日志转到 logger
type CronLogger struct{}

func (l CronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debugf("[Cron] %s %v", msg, keysAndValues)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...any) {
	// 任务 panic 经 cron.Recover 恢复后也走这里
	logger.Errorf("[PANIC RECOVER] [Cron] %s: %v %v", msg, err, keysAndValues)
}
