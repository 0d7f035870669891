package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/op/go-logging"
)

const moduleName = "orbit"

type bufferedLog struct {
	time  string
	level Level
	log   string
}

var (
	logger      *logging.Logger
	logBuffer   []bufferedLog
	logBufferMu sync.RWMutex
)

// logBufferSize 内存中保留的最近日志条数，供管理接口查看
const logBufferSize = 1000

func init() {
	InitLogger(INFO)
}

func InitLogger(level Level) {
	newLogger := logging.MustGetLogger(moduleName)

	// 优先使用 syslog，不可用时回退到 stderr 并带上时间戳
	var backend logging.Backend
	var format logging.Formatter
	if syslog, err := logging.NewSyslogBackend(""); err == nil {
		backend = syslog
		format = logging.MustStringFormatter(`%{level} - %{message}`)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
		format = logging.MustStringFormatter(`%{time:2006/01/02 15:04:05} %{level} - %{message}`)
	}

	backendFormatter := logging.NewBackendFormatter(backend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(level.toBackend(), moduleName)
	newLogger.SetBackend(backendLeveled)

	logger = newLogger
}

func Debug(args ...any) {
	logger.Debug(args...)
	addToBuffer(DEBUG, fmt.Sprint(args...))
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
	addToBuffer(DEBUG, fmt.Sprintf(format, args...))
}

func Info(args ...any) {
	logger.Info(args...)
	addToBuffer(INFO, fmt.Sprint(args...))
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
	addToBuffer(INFO, fmt.Sprintf(format, args...))
}

func Notice(args ...any) {
	logger.Notice(args...)
	addToBuffer(NOTICE, fmt.Sprint(args...))
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
	addToBuffer(NOTICE, fmt.Sprintf(format, args...))
}

func Warning(args ...any) {
	logger.Warning(args...)
	addToBuffer(WARNING, fmt.Sprint(args...))
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
	addToBuffer(WARNING, fmt.Sprintf(format, args...))
}

func Error(args ...any) {
	logger.Error(args...)
	addToBuffer(ERROR, fmt.Sprint(args...))
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
	addToBuffer(ERROR, fmt.Sprintf(format, args...))
}

func addToBuffer(level Level, newLog string) {
	logBufferMu.Lock()
	defer logBufferMu.Unlock()

	if len(logBuffer) >= logBufferSize {
		logBuffer = logBuffer[1:]
	}
	logBuffer = append(logBuffer, bufferedLog{
		time:  time.Now().Format("2006/01/02 15:04:05"),
		level: level,
		log:   newLog,
	})
}

// GetLogs 返回最近 c 条不低于 level 的日志，新的在前
func GetLogs(c int, level string) []string {
	minLevel := ParseLevel(level)

	logBufferMu.RLock()
	defer logBufferMu.RUnlock()

	var output []string
	for i := len(logBuffer) - 1; i >= 0 && len(output) < c; i-- {
		if logBuffer[i].level >= minLevel {
			output = append(output, fmt.Sprintf("%s %s - %s", logBuffer[i].time, logBuffer[i].level, logBuffer[i].log))
		}
	}
	return output
}
