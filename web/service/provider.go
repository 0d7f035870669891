package service

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"

	"github.com/google/wire"
)

// ServiceSet 包含所有服务及其相关的 Provider
var ServiceSet = wire.NewSet(
	NewServerService,
	NewClientService,
	NewSubscriptionTemplateService,
	NewPanelFactory,
)

// NewPanelFactory 每次构造面板客户端时读取超时和重试间隔，SIGHUP 重新加载配置后立即生效
func NewPanelFactory() panel.Factory {
	return func(baseURL, token string) panel.API {
		return panel.NewClient(baseURL, token,
			panel.WithTimeout(config.GetPanelTimeout()),
			panel.WithRetryDelay(config.GetPanelRetryDelay()),
		)
	}
}
