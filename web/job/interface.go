package job

// Job 后台任务的统一接口
type Job interface {
	// Start 启动任务，不应阻塞
	Start() error
	// Stop 停止任务并等待正在执行的一轮结束
	Stop() error
	// Name 任务标识
	Name() string
}
