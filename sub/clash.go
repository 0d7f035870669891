package sub

import (
	"bytes"

	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gopkg.in/yaml.v3"
)

type clashRealityOpts struct {
	PublicKey string `yaml:"public-key"`
	ShortId   string `yaml:"short-id,omitempty"`
}

type clashProxy struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	Server      string            `yaml:"server"`
	Port        int               `yaml:"port"`
	UUID        string            `yaml:"uuid,omitempty"`
	Password    string            `yaml:"password,omitempty"`
	Cipher      string            `yaml:"cipher,omitempty"`
	AlterId     *int              `yaml:"alterId,omitempty"`
	Network     string            `yaml:"network,omitempty"`
	TLS         bool              `yaml:"tls,omitempty"`
	UDP         bool              `yaml:"udp,omitempty"`
	Servername  string            `yaml:"servername,omitempty"`
	SNI         string            `yaml:"sni,omitempty"`
	Flow        string            `yaml:"flow,omitempty"`
	RealityOpts *clashRealityOpts `yaml:"reality-opts,omitempty"`
}

type clashGroup struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Proxies  []string `yaml:"proxies"`
	Url      string   `yaml:"url,omitempty"`
	Interval int      `yaml:"interval,omitempty"`
}

type clashConfig struct {
	Proxies     []clashProxy `yaml:"proxies"`
	ProxyGroups []clashGroup `yaml:"proxy-groups"`
}

// FormatClashConfig 输出 proxies 与 Proxy(select)、Auto(url-test) 两个分组
func FormatClashConfig(configs []ServerConfig) (string, error) {
	cfg := clashConfig{Proxies: []clashProxy{}}
	names := []string{}

	for _, p := range collectEntries(configs) {
		proxy, ok := genClashProxy(&p)
		if !ok {
			continue
		}
		cfg.Proxies = append(cfg.Proxies, proxy)
		names = append(names, proxy.Name)
	}

	cfg.ProxyGroups = []clashGroup{
		{Name: "Proxy", Type: "select", Proxies: names},
		{Name: "Auto", Type: "url-test", Proxies: names, Url: urlTestTarget, Interval: 300},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func genClashProxy(p *proxyEntry) (clashProxy, bool) {
	proxy := clashProxy{Name: p.name, Server: p.host, Port: p.port}
	switch p.typ {
	case model.VLESS:
		proxy.Type = "vless"
		proxy.UUID = p.uuid
		proxy.Network = p.network()
		proxy.UDP = true
		proxy.TLS = p.settings.TLS || p.settings.Reality
		if proxy.TLS {
			proxy.Servername = p.sni()
		}
		proxy.Flow = p.settings.Flow
		if p.settings.Reality {
			proxy.RealityOpts = &clashRealityOpts{PublicKey: p.settings.PublicKey, ShortId: p.settings.ShortId}
		}
	case model.VMESS:
		aid := 0
		proxy.Type = "vmess"
		proxy.UUID = p.uuid
		proxy.AlterId = &aid
		proxy.Cipher = "auto"
		proxy.Network = p.network()
		proxy.TLS = p.settings.TLS
		if p.settings.TLS {
			proxy.Servername = p.sni()
		}
	case model.Trojan:
		proxy.Type = "trojan"
		proxy.Password = p.password()
		proxy.SNI = p.sni()
	case model.Shadowsocks:
		proxy.Type = "ss"
		proxy.Cipher = p.method()
		proxy.Password = p.password()
	case model.Hysteria2:
		proxy.Type = "hysteria2"
		proxy.Password = p.password()
		proxy.SNI = p.sni()
	default:
		return proxy, false
	}
	return proxy, true
}
