package common

import "time"

// sleep 可在测试中替换
var sleep = time.Sleep

// RetryOptions 重试参数
type RetryOptions struct {
	// Retries 总尝试次数（含第一次），小于 1 时按 1 处理
	Retries int
	// Delay 基础间隔，第 n 次失败后等待 Delay*n
	Delay time.Duration
	// ShouldRetry 返回 false 时立即放弃，为 nil 表示所有错误都重试
	ShouldRetry func(err error) bool
	// OnRetry 每次准备重试前调用
	OnRetry func(attempt int, err error)
}

// Retry 执行 fn，失败时按线性退避重试，耗尽后返回最后一次的错误
func Retry[T any](fn func() (T, error), opts RetryOptions) (T, error) {
	retries := max(opts.Retries, 1)

	var zero T
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if opts.ShouldRetry != nil && !opts.ShouldRetry(err) {
			break
		}
		if attempt < retries {
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, err)
			}
			sleep(opts.Delay * time.Duration(attempt))
		}
	}
	return zero, lastErr
}

// RetryErr 是 Retry 的无返回值版本
func RetryErr(fn func() error, opts RetryOptions) error {
	_, err := Retry(func() (struct{}, error) {
		return struct{}{}, fn()
	}, opts)
	return err
}
