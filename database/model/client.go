package model

type Client struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"not null;uniqueIndex"`
	Email    string `json:"email"`
	Enabled  bool   `json:"enabled"`
	// ExpiresAt 过期时间（unix 秒），0 表示永不过期
	ExpiresAt              int64 `json:"expiresAt"`
	SubscriptionTemplateId *int  `json:"subscriptionTemplateId"`
	CreatedAt              int64 `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt              int64 `json:"updatedAt" gorm:"autoUpdateTime"`

	Servers              []ClientServer        `json:"servers" gorm:"foreignKey:ClientId;references:Id"`
	Subscription         *Subscription         `json:"subscription" gorm:"foreignKey:ClientId;references:Id"`
	SubscriptionTemplate *SubscriptionTemplate `json:"subscriptionTemplate,omitempty" gorm:"foreignKey:SubscriptionTemplateId"`
}

// IsExpired 以 unix 秒 now 判断是否已过期
func (c *Client) IsExpired(now int64) bool {
	return c.ExpiresAt > 0 && now > c.ExpiresAt
}

// ClientServer 客户端在某台服务器上的身份绑定，每个 (ClientId, ServerId) 唯一
type ClientServer struct {
	Id               int    `json:"id" gorm:"primaryKey;autoIncrement"`
	ClientId         int    `json:"clientId" gorm:"not null;uniqueIndex:idx_client_server"`
	ServerId         int    `json:"serverId" gorm:"not null;uniqueIndex:idx_client_server;index"`
	ExternalClientId int    `json:"externalClientId"`
	Uuid             string `json:"uuid" gorm:"not null"`
	CreatedAt        int64  `json:"createdAt" gorm:"autoCreateTime"`

	Server *Server `json:"server,omitempty" gorm:"foreignKey:ServerId"`
}
