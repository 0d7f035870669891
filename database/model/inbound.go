package model

type Inbound struct {
	Id                int         `json:"id" gorm:"primaryKey;autoIncrement"`
	ServerId          int         `json:"serverId" gorm:"not null;uniqueIndex:idx_server_external_inbound"`
	ExternalInboundId int         `json:"externalInboundId" gorm:"not null;uniqueIndex:idx_server_external_inbound"`
	Tag               string      `json:"tag"`
	Type              InboundType `json:"type"`
	Port              int         `json:"port"`
	Enabled           bool        `json:"enabled"`
	// Settings 为 nil 表示没有任何安全层配置
	Settings  *InboundSettings `json:"settings" gorm:"serializer:json"`
	CreatedAt int64            `json:"createdAt" gorm:"autoCreateTime"`
}

// InboundSettings 规范化后的安全层配置，字段名与订阅渲染使用的键一致
type InboundSettings struct {
	TLS        bool   `json:"tls,omitempty"`
	ServerName string `json:"server_name,omitempty"`
	Reality    bool   `json:"reality,omitempty"`
	Flow       string `json:"flow,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
	ShortId    string `json:"shortId,omitempty"`

	// 保留字段：目前没有接口写入，同步会整体覆盖 settings；
	// 渲染时为空则使用默认值（传输层 tcp，SS 加密方式默认值，密码回退为 uuid）
	Network  string `json:"network,omitempty"`
	Host     string `json:"host,omitempty"`
	Path     string `json:"path,omitempty"`
	Method   string `json:"method,omitempty"`
	Password string `json:"password,omitempty"`
}

// IsEmpty 没有任何字段被设置
func (s *InboundSettings) IsEmpty() bool {
	return s == nil || *s == InboundSettings{}
}

// Equal 比较两个配置，nil 与空配置视为相等
func (s *InboundSettings) Equal(other *InboundSettings) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	return *s == *other
}
