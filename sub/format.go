package sub

import (
	"net/url"
	"strings"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
)

// Format 订阅输出格式
type Format string

const (
	FormatV2ray   Format = "v2ray"
	FormatClash   Format = "clash"
	FormatSingbox Format = "singbox"
	FormatOutline Format = "outline"
)

const (
	defaultSSMethod = "chacha20-ietf-poly1305"
	urlTestTarget   = "http://www.gstatic.com/generate_204"
)

// ParseFormat 空字符串视为 v2ray
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatV2ray, true
	case FormatV2ray, FormatClash, FormatSingbox, FormatOutline:
		return f, true
	default:
		return "", false
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatClash:
		return "text/yaml; charset=utf-8"
	case FormatSingbox:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ServerConfig 一个客户端在一台服务器上的渲染输入
type ServerConfig struct {
	Server   *model.Server
	Inbounds []model.Inbound
	UUID     string
}

// Render 按格式渲染订阅内容
func Render(format Format, configs []ServerConfig) (string, error) {
	switch format {
	case FormatV2ray:
		return FormatV2rayLinks(configs), nil
	case FormatClash:
		return FormatClashConfig(configs)
	case FormatSingbox:
		return FormatSingboxConfig(configs)
	case FormatOutline:
		return FormatOutlineLinks(configs), nil
	default:
		return "", common.InvalidInput("sub.Render", "unknown format: %s", format)
	}
}

// proxyEntry 是一个可渲染的入站，settings 总是非 nil
type proxyEntry struct {
	name     string
	host     string
	port     int
	uuid     string
	typ      model.InboundType
	settings *model.InboundSettings
}

func (p *proxyEntry) sni() string {
	if p.settings.ServerName != "" {
		return p.settings.ServerName
	}
	return p.host
}

func (p *proxyEntry) password() string {
	if p.settings.Password != "" {
		return p.settings.Password
	}
	return p.uuid
}

func (p *proxyEntry) method() string {
	if p.settings.Method != "" {
		return p.settings.Method
	}
	return defaultSSMethod
}

func (p *proxyEntry) network() string {
	if p.settings.Network != "" {
		return p.settings.Network
	}
	return "tcp"
}

func renderable(t model.InboundType) bool {
	switch t {
	case model.VLESS, model.VMESS, model.Trojan, model.Shadowsocks, model.Hysteria2:
		return true
	}
	return false
}

// collectEntries 展开所有启用且支持渲染的入站
func collectEntries(configs []ServerConfig) []proxyEntry {
	var entries []proxyEntry
	for _, cfg := range configs {
		if cfg.Server == nil {
			continue
		}
		host := hostOf(cfg.Server.Url)
		for _, in := range cfg.Inbounds {
			if !in.Enabled || !renderable(in.Type) {
				continue
			}
			settings := in.Settings
			if settings == nil {
				settings = &model.InboundSettings{}
			}
			entries = append(entries, proxyEntry{
				name:     cfg.Server.DisplayName() + " - " + in.Tag,
				host:     host,
				port:     in.Port,
				uuid:     cfg.UUID,
				typ:      in.Type,
				settings: settings,
			})
		}
	}
	return entries
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
