package model

type Subscription struct {
	Id        int    `json:"id" gorm:"primaryKey;autoIncrement"`
	ClientId  int    `json:"clientId" gorm:"not null;uniqueIndex"`
	Token     string `json:"token" gorm:"not null;uniqueIndex"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime"`

	Client *Client `json:"-" gorm:"foreignKey:ClientId"`
}

// DefaultUpdateInterval 未配置模板时的订阅刷新间隔（小时）
const DefaultUpdateInterval = 24

type SubscriptionTemplate struct {
	Id             int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string `json:"name" gorm:"not null"`
	ProfileTitle   string `json:"profileTitle"`
	UpdateInterval int    `json:"updateInterval"`
	UpdateAlways   bool   `json:"updateAlways"`
	Announce       string `json:"announce"`
	AnnounceUrl    string `json:"announceUrl"`
	Routing        string `json:"routing"`
	// TrafficTotal 流量上限（字节），0 表示不限
	TrafficTotal int64 `json:"trafficTotal"`
	CreatedAt    int64 `json:"createdAt" gorm:"autoCreateTime"`
}
