package job

import (
	"sync"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
)

// Runner 可以在计划之外立即执行一轮的任务
type Runner interface {
	Run()
}

// Manager 按注册顺序启动和停止后台任务，并支持按名称手动触发
type Manager struct {
	mu    sync.RWMutex
	order []string
	jobs  map[string]Job
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]Job),
	}
}

// Register 注册任务，同名任务会被替换
func (m *Manager) Register(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := job.Name()
	if _, ok := m.jobs[name]; ok {
		logger.Warningf("Job %s registered twice, replacing the previous one", name)
	} else {
		m.order = append(m.order, name)
	}
	m.jobs[name] = job
	logger.Infof("Registered job: %s", name)
}

// Get 按名称查找已注册的任务
func (m *Manager) Get(name string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[name]
	return job, ok
}

// Trigger 在后台立即执行一轮指定任务，任务未注册或不支持手动执行时返回 false
func (m *Manager) Trigger(name string) bool {
	job, ok := m.Get(name)
	if !ok {
		logger.Warningf("Job %s is not registered", name)
		return false
	}
	runner, ok := job.(Runner)
	if !ok {
		logger.Warningf("Job %s cannot be run manually", name)
		return false
	}
	logger.Infof("Triggering job %s manually", name)
	go runner.Run()
	return true
}

func (m *Manager) list() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]Job, 0, len(m.order))
	for _, name := range m.order {
		jobs = append(jobs, m.jobs[name])
	}
	return jobs
}

// StartAll 启动全部任务，单个任务启动失败只记录日志
func (m *Manager) StartAll() {
	jobs := m.list()
	logger.Infof("Starting %d background jobs...", len(jobs))

	failed := 0
	for _, job := range jobs {
		if err := job.Start(); err != nil {
			failed++
			logger.Errorf("Failed to start job %s: %v", job.Name(), err)
		}
	}
	if failed > 0 {
		logger.Warningf("%d of %d background jobs failed to start", failed, len(jobs))
	}
}

// StopAll 并行停止全部任务并等待结束
func (m *Manager) StopAll() {
	jobs := m.list()
	logger.Info("Stopping all background jobs...")

	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			if err := job.Stop(); err != nil {
				logger.Errorf("Failed to stop job %s: %v", job.Name(), err)
				return
			}
			logger.Debugf("Job %s stopped", job.Name())
		}(j)
	}
	wg.Wait()
	logger.Info("All background jobs stopped")
}
