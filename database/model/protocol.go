package model

import "strings"

type InboundType string

const (
	VLESS       InboundType = "VLESS"
	VMESS       InboundType = "VMESS"
	Trojan      InboundType = "TROJAN"
	Shadowsocks InboundType = "SHADOWSOCKS"
	Hysteria2   InboundType = "HYSTERIA2"
	TUIC        InboundType = "TUIC"
	Naive       InboundType = "NAIVE"
	ShadowTLS   InboundType = "SHADOWTLS"
)

// supportedInboundTypes 同步时允许落库的入站协议
var supportedInboundTypes = map[InboundType]struct{}{
	VLESS:       {},
	VMESS:       {},
	Trojan:      {},
	Shadowsocks: {},
	Hysteria2:   {},
	TUIC:        {},
	Naive:       {},
	ShadowTLS:   {},
}

// ParseInboundType 将面板上报的协议名（如 "vless"）转换为 InboundType，
// 不在白名单内时第二个返回值为 false
func ParseInboundType(s string) (InboundType, bool) {
	t := InboundType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := supportedInboundTypes[t]
	return t, ok
}
