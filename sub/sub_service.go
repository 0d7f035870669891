package sub

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
)

var (
	ErrInvalidToken = errors.New("invalid subscription token")
	ErrDisabled     = errors.New("subscription disabled")
	ErrExpired      = errors.New("subscription expired")
)

// Result 渲染好的订阅内容及响应头
type Result struct {
	Body        string
	ContentType string
	Headers     map[string]string
}

type SubService struct {
	subRepo repository.SubscriptionRepository
	now     func() time.Time
}

func NewSubService(subRepo repository.SubscriptionRepository) *SubService {
	return &SubService{subRepo: subRepo, now: time.Now}
}

// Resolve 按令牌查找订阅，并检查客户端是否启用且未过期
func (s *SubService) Resolve(token string) (*model.Subscription, error) {
	sub, err := s.subRepo.FindByToken(token)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, common.Wrap("SubService.Resolve", err)
	}
	if sub.Client == nil {
		return nil, ErrInvalidToken
	}
	if !sub.Client.Enabled {
		return nil, ErrDisabled
	}
	if sub.Client.IsExpired(s.now().Unix()) {
		return nil, ErrExpired
	}
	return sub, nil
}

// GetSubscription 解析令牌并按格式渲染，格式未知时返回 InvalidInput
func (s *SubService) GetSubscription(token, rawFormat string) (*Result, error) {
	sub, err := s.Resolve(token)
	if err != nil {
		return nil, err
	}
	format, ok := ParseFormat(rawFormat)
	if !ok {
		return nil, common.InvalidInput("SubService.GetSubscription", "Unknown format: %s", rawFormat)
	}

	body, err := Render(format, BuildServerConfigs(sub.Client))
	if err != nil {
		return nil, common.Wrap("SubService.GetSubscription", err)
	}
	return &Result{
		Body:        body,
		ContentType: format.ContentType(),
		Headers:     BuildHeaders(sub.Client),
	}, nil
}

// BuildServerConfigs 把客户端的服务器绑定展开为渲染输入
func BuildServerConfigs(client *model.Client) []ServerConfig {
	configs := make([]ServerConfig, 0, len(client.Servers))
	for _, cs := range client.Servers {
		if cs.Server == nil {
			continue
		}
		configs = append(configs, ServerConfig{
			Server:   cs.Server,
			Inbounds: cs.Server.Inbounds,
			UUID:     cs.Uuid,
		})
	}
	return configs
}

// BuildHeaders 根据订阅模板与过期时间生成订阅响应头
func BuildHeaders(client *model.Client) map[string]string {
	tpl := client.SubscriptionTemplate
	headers := map[string]string{
		"Cache-Control": "no-cache",
	}

	title := client.Username + " Subscription"
	interval := model.DefaultUpdateInterval
	var total int64
	if tpl != nil {
		if tpl.ProfileTitle != "" {
			title = tpl.ProfileTitle
		}
		interval = tpl.UpdateInterval
		total = tpl.TrafficTotal
		if tpl.UpdateAlways {
			headers["Update-Always"] = "true"
		}
		if tpl.Announce != "" {
			headers["Announce"] = tpl.Announce
		}
		if tpl.AnnounceUrl != "" {
			headers["Announce-Url"] = tpl.AnnounceUrl
		}
		if tpl.Routing != "" {
			headers["Routing"] = tpl.Routing
		}
	}
	headers["Profile-Title"] = title
	headers["Profile-Update-Interval"] = strconv.Itoa(interval)

	userinfo := []string{"upload=0", "download=0", "total=" + strconv.FormatInt(total, 10)}
	if client.ExpiresAt > 0 {
		userinfo = append(userinfo, "expire="+strconv.FormatInt(client.ExpiresAt, 10))
	}
	headers["Subscription-Userinfo"] = strings.Join(userinfo, "; ")
	return headers
}
