package sub

import (
	"encoding/json"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
)

type singboxReality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortId   string `json:"short_id,omitempty"`
}

type singboxTLS struct {
	Enabled    bool            `json:"enabled"`
	ServerName string          `json:"server_name"`
	Reality    *singboxReality `json:"reality,omitempty"`
}

type singboxOutbound struct {
	Type       string      `json:"type"`
	Tag        string      `json:"tag"`
	Server     string      `json:"server,omitempty"`
	ServerPort int         `json:"server_port,omitempty"`
	UUID       string      `json:"uuid,omitempty"`
	Flow       string      `json:"flow,omitempty"`
	AlterId    *int        `json:"alter_id,omitempty"`
	Security   string      `json:"security,omitempty"`
	Method     string      `json:"method,omitempty"`
	Password   string      `json:"password,omitempty"`
	TLS        *singboxTLS `json:"tls,omitempty"`
	Outbounds  []string    `json:"outbounds,omitempty"`
	Url        string      `json:"url,omitempty"`
	Interval   string      `json:"interval,omitempty"`
}

type singboxConfig struct {
	Outbounds []singboxOutbound `json:"outbounds"`
}

// FormatSingboxConfig 每个入站一个 outbound，末尾追加 proxy 选择器与 auto 测速组
func FormatSingboxConfig(configs []ServerConfig) (string, error) {
	cfg := singboxConfig{Outbounds: []singboxOutbound{}}
	tags := []string{}

	for _, p := range collectEntries(configs) {
		out, ok := genSingboxOutbound(&p)
		if !ok {
			continue
		}
		cfg.Outbounds = append(cfg.Outbounds, out)
		tags = append(tags, out.Tag)
	}

	cfg.Outbounds = append(cfg.Outbounds,
		singboxOutbound{Type: "selector", Tag: "proxy", Outbounds: tags},
		singboxOutbound{Type: "urltest", Tag: "auto", Outbounds: tags, Url: urlTestTarget, Interval: "5m"},
	)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func genSingboxOutbound(p *proxyEntry) (singboxOutbound, bool) {
	out := singboxOutbound{Tag: p.name, Server: p.host, ServerPort: p.port}
	tls := &singboxTLS{Enabled: true, ServerName: p.sni()}

	switch p.typ {
	case model.VLESS:
		out.Type = "vless"
		out.UUID = p.uuid
		out.Flow = p.settings.Flow
		if p.settings.Reality {
			tls.Reality = &singboxReality{Enabled: true, PublicKey: p.settings.PublicKey, ShortId: p.settings.ShortId}
		}
		if p.settings.TLS || p.settings.Reality {
			out.TLS = tls
		}
	case model.VMESS:
		aid := 0
		out.Type = "vmess"
		out.UUID = p.uuid
		out.AlterId = &aid
		out.Security = "auto"
		if p.settings.TLS {
			out.TLS = tls
		}
	case model.Trojan:
		out.Type = "trojan"
		out.Password = p.password()
		out.TLS = tls
	case model.Shadowsocks:
		out.Type = "shadowsocks"
		out.Method = p.method()
		out.Password = p.password()
	case model.Hysteria2:
		out.Type = "hysteria2"
		out.Password = p.password()
		out.TLS = tls
	default:
		return out, false
	}
	return out, true
}
