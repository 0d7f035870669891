package sub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
)

// FormatV2rayLinks 每行一个分享链接，整体再做一次 base64
func FormatV2rayLinks(configs []ServerConfig) string {
	var links []string
	for _, p := range collectEntries(configs) {
		if link := genLink(&p); link != "" {
			links = append(links, link)
		}
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(links, "\n")))
}

// FormatOutlineLinks 只输出 Shadowsocks 链接，不做额外编码
func FormatOutlineLinks(configs []ServerConfig) string {
	var links []string
	for _, p := range collectEntries(configs) {
		if p.typ == model.Shadowsocks {
			links = append(links, genShadowsocksLink(&p))
		}
	}
	return strings.Join(links, "\n")
}

func genLink(p *proxyEntry) string {
	switch p.typ {
	case model.VLESS:
		return genVlessLink(p)
	case model.VMESS:
		return genVmessLink(p)
	case model.Trojan:
		return genTrojanLink(p)
	case model.Shadowsocks:
		return genShadowsocksLink(p)
	case model.Hysteria2:
		return genHysteria2Link(p)
	}
	return ""
}

func fragment(name string) string {
	return "#" + url.PathEscape(name)
}

func hostPort(host string, port int) string {
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// vlessSecurity 生成 security 相关的查询参数
func vlessSecurity(p *proxyEntry) string {
	sni := url.QueryEscape(p.sni())
	switch {
	case p.settings.Reality:
		params := "security=reality&pbk=" + url.QueryEscape(p.settings.PublicKey)
		if p.settings.ShortId != "" {
			params += "&sid=" + url.QueryEscape(p.settings.ShortId)
		}
		return params + "&sni=" + sni
	case p.settings.TLS:
		return "security=tls&sni=" + sni
	default:
		return "security=none&sni=" + sni
	}
}

func genVlessLink(p *proxyEntry) string {
	var b strings.Builder
	b.WriteString("vless://")
	b.WriteString(p.uuid)
	b.WriteString("@")
	b.WriteString(hostPort(p.host, p.port))
	b.WriteString("?type=")
	b.WriteString(url.QueryEscape(p.network()))
	b.WriteString("&")
	b.WriteString(vlessSecurity(p))
	if p.settings.Flow != "" {
		b.WriteString("&flow=")
		b.WriteString(url.QueryEscape(p.settings.Flow))
	}
	b.WriteString(fragment(p.name))
	return b.String()
}

// vmessConfig 字段顺序与常见客户端的 vmess JSON 保持一致
type vmessConfig struct {
	V    string `json:"v"`
	Ps   string `json:"ps"`
	Add  string `json:"add"`
	Port int    `json:"port"`
	Id   string `json:"id"`
	Aid  int    `json:"aid"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	Tls  string `json:"tls"`
	Sni  string `json:"sni"`
}

func genVmessLink(p *proxyEntry) string {
	cfg := vmessConfig{
		V:    "2",
		Ps:   p.name,
		Add:  p.host,
		Port: p.port,
		Id:   p.uuid,
		Net:  p.network(),
		Type: "none",
		Host: p.settings.Host,
		Path: p.settings.Path,
		Sni:  p.sni(),
	}
	if p.settings.TLS {
		cfg.Tls = "tls"
	}
	data, _ := json.Marshal(cfg)
	return "vmess://" + base64.StdEncoding.EncodeToString(data)
}

func genTrojanLink(p *proxyEntry) string {
	return fmt.Sprintf("trojan://%s@%s?sni=%s%s",
		url.PathEscape(p.password()), hostPort(p.host, p.port), url.QueryEscape(p.sni()), fragment(p.name))
}

func genShadowsocksLink(p *proxyEntry) string {
	userinfo := base64.StdEncoding.EncodeToString([]byte(p.method() + ":" + p.password()))
	return fmt.Sprintf("ss://%s@%s%s", userinfo, hostPort(p.host, p.port), fragment(p.name))
}

func genHysteria2Link(p *proxyEntry) string {
	return fmt.Sprintf("hysteria2://%s@%s?sni=%s%s",
		url.PathEscape(p.password()), hostPort(p.host, p.port), url.QueryEscape(p.sni()), fragment(p.name))
}
