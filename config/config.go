package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug   LogLevel = "debug"
	Info    LogLevel = "info"
	Notice  LogLevel = "notice"
	Warning LogLevel = "warning"
	Error   LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := viper.GetString("app.log_level")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return viper.GetBool("app.debug")
}

func getBaseDir() string {
	exePath, err := os.Executable()
	if err != nil {
		return "."
	}
	exeDir := filepath.Dir(exePath)
	exeDirLower := strings.ToLower(filepath.ToSlash(exeDir))
	if strings.Contains(exeDirLower, "/appdata/local/temp/") || strings.Contains(exeDirLower, "/go-build") {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return exeDir
}

func GetDBFolderPath() string {
	path := viper.GetString("paths.db_folder")
	if path != "" {
		return path
	}
	if runtime.GOOS == "windows" {
		return getBaseDir()
	}
	return "/etc/sing-box-orbit"
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

// =================================================================
// 管理接口 / 订阅服务
// =================================================================

func GetWebListen() string {
	return viper.GetString("web.listen")
}

func GetWebPort() int {
	return viper.GetInt("web.port")
}

// GetWebDomain 非空时管理接口只接受该 Host 的请求
func GetWebDomain() string {
	return viper.GetString("web.domain")
}

// GetAdminToken 管理接口的 Bearer Token，为空时拒绝所有管理请求
func GetAdminToken() string {
	return viper.GetString("web.admin_token")
}

func GetSubListen() string {
	return viper.GetString("sub.listen")
}

func GetSubPort() int {
	return viper.GetInt("sub.port")
}

// GetSubDomain 非空时订阅服务只接受该 Host 的请求
func GetSubDomain() string {
	return viper.GetString("sub.domain")
}

// GetSubPath 订阅路径，总是以 / 开头且不以 / 结尾
func GetSubPath() string {
	path := strings.TrimRight(viper.GetString("sub.path"), "/")
	if path == "" {
		return "/s"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// GetSubBaseURL 对外暴露的订阅地址前缀，用于生成二维码
func GetSubBaseURL() string {
	return strings.TrimRight(viper.GetString("sub.base_url"), "/")
}

func GetSubRateLimit() (float64, int) {
	return viper.GetFloat64("sub.rate_limit"), viper.GetInt("sub.rate_burst")
}

// GetSubRateWhitelist 不受订阅限速约束的客户端 IP
func GetSubRateWhitelist() []string {
	return viper.GetStringSlice("sub.rate_whitelist")
}

// =================================================================
// 面板通信
// =================================================================

func GetPanelTimeout() time.Duration {
	return viper.GetDuration("panel.timeout")
}

func GetPanelRetryDelay() time.Duration {
	return viper.GetDuration("panel.retry_delay")
}

// =================================================================
// 入站同步
// =================================================================

func IsSyncEnabled() bool {
	return viper.GetBool("sync.enabled")
}

func GetSyncSchedule() string {
	return viper.GetString("sync.schedule")
}

// GetSyncStaleAfter 超过该时长仍处于 syncing 的服务器视为上次同步已中断
func GetSyncStaleAfter() time.Duration {
	return viper.GetDuration("sync.stale_after")
}
