package config

import (
	"errors"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ORBIT"

// envBindings 常用配置项的短环境变量名
var envBindings = map[string]string{
	"app.debug":        "ORBIT_DEBUG",
	"app.log_level":    "ORBIT_LOG_LEVEL",
	"paths.db_folder":  "ORBIT_DB_FOLDER",
	"web.admin_token":  "ORBIT_ADMIN_TOKEN",
	"web.port":         "ORBIT_WEB_PORT",
	"sub.port":         "ORBIT_SUB_PORT",
	"sub.base_url":     "ORBIT_SUB_BASE_URL",
	"panel.timeout":    "ORBIT_PANEL_TIMEOUT",
	"sync.schedule":    "ORBIT_SYNC_SCHEDULE",
	"sync.enabled":     "ORBIT_SYNC_ENABLED",
	"sync.stale_after": "ORBIT_SYNC_STALE_AFTER",
}

func initStaticConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/sing-box-orbit")
	viper.AddConfigPath(".")
	viper.AddConfigPath(getBaseDir())

	// 环境变量设置
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		_ = viper.BindEnv(key, env)
	}

	setStaticDefaults()

	// 配置文件可选，不存在时使用默认值
	_ = viper.ReadInConfig()
}

func setStaticDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	if runtime.GOOS == "windows" {
		viper.SetDefault("paths.db_folder", getBaseDir())
	} else {
		viper.SetDefault("paths.db_folder", "/etc/sing-box-orbit")
	}

	viper.SetDefault("web.listen", "")
	viper.SetDefault("web.port", 3000)
	viper.SetDefault("web.domain", "")
	viper.SetDefault("web.admin_token", "")

	viper.SetDefault("sub.listen", "")
	viper.SetDefault("sub.port", 3001)
	viper.SetDefault("sub.domain", "")
	viper.SetDefault("sub.path", "/s")
	viper.SetDefault("sub.base_url", "")
	viper.SetDefault("sub.rate_limit", 2.0)
	viper.SetDefault("sub.rate_burst", 10)
	viper.SetDefault("sub.rate_whitelist", []string{"127.0.0.1", "::1"})

	viper.SetDefault("panel.timeout", "15s")
	viper.SetDefault("panel.retry_delay", "500ms")

	viper.SetDefault("sync.enabled", true)
	viper.SetDefault("sync.schedule", "@every 10m")
	viper.SetDefault("sync.stale_after", "10m")
}

func init() {
	initStaticConfig()
}

// Reload 重新读取配置文件，用于 SIGHUP 重启
func Reload() error {
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}
