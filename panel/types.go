package panel

import "encoding/json"

// Response 面板 API 的统一响应包
type Response[T any] struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Obj     *T     `json:"obj,omitempty"`
}

type Status struct {
	Running   bool   `json:"running"`
	Version   string `json:"version"`
	StartTime int64  `json:"startTime"`
}

// LoadData 是 load 接口返回的快照，outbounds 等字段本服务不关心
type LoadData struct {
	Inbounds []Inbound      `json:"inbounds"`
	Tls      []Tls          `json:"tls"`
	Clients  []RemoteClient `json:"clients"`
}

type Inbound struct {
	Id         int      `json:"id"`
	Tag        string   `json:"tag"`
	Type       string   `json:"type"`
	Listen     string   `json:"listen"`
	ListenPort int      `json:"listen_port"`
	TlsId      *int     `json:"tls_id,omitempty"`
	Users      []string `json:"users,omitempty"`
}

type TlsReality struct {
	Enabled    bool     `json:"enabled"`
	PrivateKey string   `json:"private_key"`
	ShortId    []string `json:"short_id"`
	Handshake  *struct {
		Server     string `json:"server"`
		ServerPort int    `json:"server_port"`
	} `json:"handshake,omitempty"`
}

type TlsServer struct {
	Enabled    bool        `json:"enabled"`
	ServerName string      `json:"server_name,omitempty"`
	Alpn       []string    `json:"alpn,omitempty"`
	Reality    *TlsReality `json:"reality,omitempty"`
}

type TlsClientReality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortId   string `json:"short_id"`
}

type TlsClient struct {
	Enabled    bool              `json:"enabled"`
	ServerName string            `json:"server_name,omitempty"`
	Reality    *TlsClientReality `json:"reality,omitempty"`
}

type Tls struct {
	Id     int        `json:"id"`
	Name   string     `json:"name"`
	Server TlsServer  `json:"server"`
	Client *TlsClient `json:"client,omitempty"`
}

// RemoteClient 是面板上已存在的客户端
type RemoteClient struct {
	Id       int             `json:"id"`
	Name     string          `json:"name"`
	Enable   bool            `json:"enable"`
	Inbounds []int           `json:"inbounds"`
	Config   json.RawMessage `json:"config,omitempty"`
	Expiry   int64           `json:"expiry,omitempty"`
}

// ClientSaveData 是 save(object=clients) 的 data 字段
type ClientSaveData struct {
	Id       int            `json:"id,omitempty"`
	Enable   bool           `json:"enable"`
	Name     string         `json:"name"`
	Desc     string         `json:"desc,omitempty"`
	Group    string         `json:"group,omitempty"`
	Inbounds []int          `json:"inbounds"`
	Config   map[string]any `json:"config"`
	Volume   int64          `json:"volume,omitempty"`
	Expiry   int64          `json:"expiry,omitempty"`
}

// FlowVision 是 VLESS reality 入站使用的流控
const FlowVision = "xtls-rprx-vision"

// VlessConfig 构造面板客户端的 vless 配置
func VlessConfig(name, uuid string) map[string]any {
	return map[string]any{
		"vless": map[string]any{
			"name": name,
			"uuid": uuid,
			"flow": FlowVision,
		},
	}
}

// FindClientByName 在快照中按名称查找客户端
func (d *LoadData) FindClientByName(name string) (*RemoteClient, bool) {
	for i := range d.Clients {
		if d.Clients[i].Name == name {
			return &d.Clients[i], true
		}
	}
	return nil, false
}
