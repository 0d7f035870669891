package model

type ServerStatus string

const (
	ServerOnline  ServerStatus = "online"
	ServerOffline ServerStatus = "offline"
	ServerSyncing ServerStatus = "syncing"
	ServerError   ServerStatus = "error"
)

type Server struct {
	Id         int          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string       `json:"name" gorm:"not null"`
	Url        string       `json:"url" gorm:"not null"`
	ApiToken   string       `json:"-" gorm:"not null"`
	Location   string       `json:"location"`
	Status     ServerStatus `json:"status" gorm:"default:offline;index"`
	LastSyncAt int64        `json:"lastSyncAt"`
	CreatedAt  int64        `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  int64        `json:"updatedAt" gorm:"autoUpdateTime"`

	Inbounds []Inbound `json:"inbounds" gorm:"foreignKey:ServerId;references:Id"`
}

// DisplayName 订阅中的节点前缀，优先使用地区
func (s *Server) DisplayName() string {
	if s.Location != "" {
		return s.Location
	}
	return s.Name
}
