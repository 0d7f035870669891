package sub

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func serverConfig(inbounds ...model.Inbound) []ServerConfig {
	return []ServerConfig{{
		Server:   &model.Server{Id: 1, Name: "srv", Url: "https://example.com:2095"},
		Inbounds: inbounds,
		UUID:     "u1",
	}}
}

func inbound(tag string, typ model.InboundType, port int, settings *model.InboundSettings) model.Inbound {
	return model.Inbound{Tag: tag, Type: typ, Port: port, Enabled: true, Settings: settings}
}

func decodeLinks(t *testing.T, body string) []string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err)
	return strings.Split(string(raw), "\n")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatV2ray, true},
		{"v2ray", FormatV2ray, true},
		{"CLASH", FormatClash, true},
		{"singbox", FormatSingbox, true},
		{"outline", FormatOutline, true},
		{"surge", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVlessRealityLink(t *testing.T) {
	cfgs := []ServerConfig{{
		Server: &model.Server{Name: "srv", Url: "http://example.com"},
		Inbounds: []model.Inbound{inbound("reality", model.VLESS, 443, &model.InboundSettings{
			Reality: true, PublicKey: "pk1", ShortId: "sid1", Flow: "xtls-rprx-vision",
		})},
		UUID: "u1",
	}}

	links := decodeLinks(t, FormatV2rayLinks(cfgs))
	require.Len(t, links, 1)
	assert.True(t, strings.HasPrefix(links[0], "vless://u1@example.com:443?"))
	assert.Contains(t, links[0], "security=reality&pbk=pk1&sid=sid1&sni=example.com")
	assert.Contains(t, links[0], "flow=xtls-rprx-vision")
	assert.True(t, strings.HasSuffix(links[0], "#srv%20-%20reality"))
}

func TestVlessSecurity(t *testing.T) {
	tests := []struct {
		name     string
		settings *model.InboundSettings
		want     string
	}{
		{"无 short id", &model.InboundSettings{Reality: true, PublicKey: "pk"}, "security=reality&pbk=pk&sni=example.com"},
		{"tls 覆盖 sni", &model.InboundSettings{TLS: true, ServerName: "cdn.example.org"}, "security=tls&sni=cdn.example.org"},
		{"无安全层", nil, "security=none&sni=example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := collectEntries(serverConfig(inbound("a", model.VLESS, 443, tt.settings)))
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, vlessSecurity(&entries[0]))
		})
	}
}

func TestShadowsocksLinkDefaults(t *testing.T) {
	cfgs := []ServerConfig{{
		Server:   &model.Server{Name: "srv", Url: "http://h"},
		Inbounds: []model.Inbound{inbound("ss", model.Shadowsocks, 443, nil)},
		UUID:     "u1",
	}}

	links := decodeLinks(t, FormatV2rayLinks(cfgs))
	require.Len(t, links, 1)
	require.True(t, strings.HasPrefix(links[0], "ss://"))

	userinfo := strings.SplitN(strings.TrimPrefix(links[0], "ss://"), "@", 2)[0]
	decoded, err := base64.StdEncoding.DecodeString(userinfo)
	require.NoError(t, err)
	assert.Equal(t, "chacha20-ietf-poly1305:u1", string(decoded))
	assert.Contains(t, links[0], "@h:443#")
}

func TestPasswordFallsBackToUuid(t *testing.T) {
	links := decodeLinks(t, FormatV2rayLinks(serverConfig(
		inbound("tj", model.Trojan, 8443, nil),
		inbound("hy", model.Hysteria2, 8444, &model.InboundSettings{Password: "explicit"}),
	)))
	require.Len(t, links, 2)
	assert.True(t, strings.HasPrefix(links[0], "trojan://u1@example.com:8443?sni=example.com"))
	assert.True(t, strings.HasPrefix(links[1], "hysteria2://explicit@example.com:8444?sni=example.com"))
}

func TestVmessLink(t *testing.T) {
	links := decodeLinks(t, FormatV2rayLinks(serverConfig(
		inbound("vm", model.VMESS, 10086, &model.InboundSettings{TLS: true, Network: "ws", Path: "/ws"}),
	)))
	require.Len(t, links, 1)
	require.True(t, strings.HasPrefix(links[0], "vmess://"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(links[0], "vmess://"))
	require.NoError(t, err)
	var cfg vmessConfig
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Equal(t, "srv - vm", cfg.Ps)
	assert.Equal(t, "example.com", cfg.Add)
	assert.Equal(t, 10086, cfg.Port)
	assert.Equal(t, "u1", cfg.Id)
	assert.Equal(t, "ws", cfg.Net)
	assert.Equal(t, "/ws", cfg.Path)
	assert.Equal(t, "tls", cfg.Tls)
}

func TestSkipsDisabledAndUnsupported(t *testing.T) {
	disabled := inbound("off", model.VLESS, 1, nil)
	disabled.Enabled = false
	links := decodeLinks(t, FormatV2rayLinks(serverConfig(
		disabled,
		inbound("tuic", model.TUIC, 2, nil),
		inbound("on", model.VLESS, 3, nil),
	)))
	require.Len(t, links, 1)
	assert.Contains(t, links[0], "#srv%20-%20on")
}

func TestDisplayNamePrefersLocation(t *testing.T) {
	cfgs := serverConfig(inbound("a", model.VLESS, 443, nil))
	cfgs[0].Server.Location = "Frankfurt"
	entries := collectEntries(cfgs)
	require.Len(t, entries, 1)
	assert.Equal(t, "Frankfurt - a", entries[0].name)
}

func TestOutlineOnlyShadowsocks(t *testing.T) {
	out := FormatOutlineLinks(serverConfig(
		inbound("v1", model.VLESS, 443, nil),
		inbound("s1", model.Shadowsocks, 8388, nil),
		inbound("v2", model.VLESS, 444, nil),
		inbound("s2", model.Shadowsocks, 8389, &model.InboundSettings{Method: "aes-256-gcm", Password: "pw"}),
	))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "ss://"), line)
	}
	assert.Contains(t, lines[1], base64.StdEncoding.EncodeToString([]byte("aes-256-gcm:pw")))
}

func TestClashConfig(t *testing.T) {
	body, err := FormatClashConfig(serverConfig(
		inbound("vl", model.VLESS, 443, &model.InboundSettings{Reality: true, PublicKey: "pk", ShortId: "sid"}),
		inbound("ss", model.Shadowsocks, 8388, nil),
		inbound("naive", model.Naive, 9000, nil),
	))
	require.NoError(t, err)

	var cfg clashConfig
	require.NoError(t, yaml.Unmarshal([]byte(body), &cfg))
	require.Len(t, cfg.Proxies, 2)

	vl := cfg.Proxies[0]
	assert.Equal(t, "vless", vl.Type)
	assert.Equal(t, "u1", vl.UUID)
	assert.True(t, vl.TLS)
	assert.Equal(t, "example.com", vl.Servername)
	require.NotNil(t, vl.RealityOpts)
	assert.Equal(t, "pk", vl.RealityOpts.PublicKey)

	ss := cfg.Proxies[1]
	assert.Equal(t, "ss", ss.Type)
	assert.Equal(t, "chacha20-ietf-poly1305", ss.Cipher)
	assert.Equal(t, "u1", ss.Password)

	names := []string{"srv - vl", "srv - ss"}
	require.Len(t, cfg.ProxyGroups, 2)
	assert.Equal(t, "Proxy", cfg.ProxyGroups[0].Name)
	assert.Equal(t, "select", cfg.ProxyGroups[0].Type)
	assert.Equal(t, names, cfg.ProxyGroups[0].Proxies)
	assert.Equal(t, "Auto", cfg.ProxyGroups[1].Name)
	assert.Equal(t, "url-test", cfg.ProxyGroups[1].Type)
	assert.Equal(t, 300, cfg.ProxyGroups[1].Interval)
	assert.Equal(t, names, cfg.ProxyGroups[1].Proxies)
}

func TestClashPlainVlessHasNoTLS(t *testing.T) {
	body, err := FormatClashConfig(serverConfig(inbound("vl", model.VLESS, 443, nil)))
	require.NoError(t, err)
	assert.NotContains(t, body, "tls:")
	assert.NotContains(t, body, "servername")
}

func TestSingboxConfig(t *testing.T) {
	body, err := FormatSingboxConfig(serverConfig(
		inbound("vl", model.VLESS, 443, &model.InboundSettings{TLS: true, ServerName: "sni.example.com"}),
		inbound("tj", model.Trojan, 8443, nil),
		inbound("stls", model.ShadowTLS, 9000, nil),
	))
	require.NoError(t, err)

	var cfg singboxConfig
	require.NoError(t, json.Unmarshal([]byte(body), &cfg))
	require.Len(t, cfg.Outbounds, 4)

	vl := cfg.Outbounds[0]
	assert.Equal(t, "vless", vl.Type)
	assert.Equal(t, "srv - vl", vl.Tag)
	require.NotNil(t, vl.TLS)
	assert.Equal(t, "sni.example.com", vl.TLS.ServerName)
	assert.Nil(t, vl.TLS.Reality)

	assert.Equal(t, "trojan", cfg.Outbounds[1].Type)
	assert.Equal(t, "u1", cfg.Outbounds[1].Password)

	tags := []string{"srv - vl", "srv - tj"}
	assert.Equal(t, singboxOutbound{Type: "selector", Tag: "proxy", Outbounds: tags}, cfg.Outbounds[2])
	auto := cfg.Outbounds[3]
	assert.Equal(t, "urltest", auto.Type)
	assert.Equal(t, "auto", auto.Tag)
	assert.Equal(t, "5m", auto.Interval)
	assert.Equal(t, tags, auto.Outbounds)
}

func TestRenderEmpty(t *testing.T) {
	body, err := Render(FormatV2ray, nil)
	require.NoError(t, err)
	assert.Equal(t, "", body)

	body, err = Render(FormatSingbox, nil)
	require.NoError(t, err)
	assert.Contains(t, body, `"tag": "proxy"`)
}
