// Package model 包含所有数据库模型定义
// 模型已按领域拆分到独立文件中：
// - protocol.go: InboundType 枚举与协议白名单
// - server.go: Server 模型与状态
// - inbound.go: Inbound, InboundSettings 模型
// - client.go: Client, ClientServer 模型
// - subscription.go: Subscription, SubscriptionTemplate 模型
package model

// AllModels 返回需要 AutoMigrate 的全部模型
func AllModels() []any {
	return []any{
		&Server{},
		&Inbound{},
		&SubscriptionTemplate{},
		&Client{},
		&ClientServer{},
		&Subscription{},
	}
}
