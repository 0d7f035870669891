package entity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
)

// Msg 管理 API 的统一响应体
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Code    string `json:"code,omitempty"`
	Obj     any    `json:"obj"`
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	maxUsernameLen = 64
	maxNameLen     = 128
	maxTitleLen    = 256
	maxAnnounceLen = 512
)

// =================================================================
// 服务器
// =================================================================

type ServerCreate struct {
	Name     string `json:"name"`
	Url      string `json:"url"`
	ApiToken string `json:"apiToken"`
	Location string `json:"location"`
}

func (s *ServerCreate) CheckValid() error {
	const op = "ServerCreate.CheckValid"
	if err := checkName(op, "name", s.Name); err != nil {
		return err
	}
	if err := checkHTTPURL(op, "url", s.Url); err != nil {
		return err
	}
	if strings.TrimSpace(s.ApiToken) == "" {
		return common.InvalidInput(op, "apiToken is required")
	}
	if len(s.Location) > maxNameLen {
		return common.InvalidInput(op, "location must be at most %d characters", maxNameLen)
	}
	return nil
}

// ServerUpdate 中为 nil 的字段保持不变
type ServerUpdate struct {
	Name     *string `json:"name"`
	Url      *string `json:"url"`
	ApiToken *string `json:"apiToken"`
	Location *string `json:"location"`
}

func (s *ServerUpdate) CheckValid() error {
	const op = "ServerUpdate.CheckValid"
	if s.Name != nil {
		if err := checkName(op, "name", *s.Name); err != nil {
			return err
		}
	}
	if s.Url != nil {
		if err := checkHTTPURL(op, "url", *s.Url); err != nil {
			return err
		}
	}
	if s.ApiToken != nil && strings.TrimSpace(*s.ApiToken) == "" {
		return common.InvalidInput(op, "apiToken must not be empty")
	}
	if s.Location != nil && len(*s.Location) > maxNameLen {
		return common.InvalidInput(op, "location must be at most %d characters", maxNameLen)
	}
	return nil
}

// =================================================================
// 客户端
// =================================================================

type ClientCreate struct {
	Username               string `json:"username"`
	Email                  string `json:"email"`
	ExpiresAt              int64  `json:"expiresAt"`
	ServerIds              []int  `json:"serverIds"`
	SubscriptionTemplateId *int   `json:"subscriptionTemplateId"`
}

func (c *ClientCreate) CheckValid() error {
	const op = "ClientCreate.CheckValid"
	if err := checkUsername(op, c.Username); err != nil {
		return err
	}
	if c.ExpiresAt < 0 {
		return common.InvalidInput(op, "expiresAt must not be negative")
	}
	if len(c.ServerIds) == 0 {
		return common.InvalidInput(op, "at least one server id is required")
	}
	return nil
}

// ClientUpdate 中为 nil 的字段保持不变；ClearTemplate 为 true 时解除模板
type ClientUpdate struct {
	Username               *string `json:"username"`
	Email                  *string `json:"email"`
	Enabled                *bool   `json:"enabled"`
	ExpiresAt              *int64  `json:"expiresAt"`
	SubscriptionTemplateId *int    `json:"subscriptionTemplateId"`
	ClearTemplate          bool    `json:"clearTemplate"`
}

func (c *ClientUpdate) CheckValid() error {
	const op = "ClientUpdate.CheckValid"
	if c.Username != nil {
		if err := checkUsername(op, *c.Username); err != nil {
			return err
		}
	}
	if c.ExpiresAt != nil && *c.ExpiresAt < 0 {
		return common.InvalidInput(op, "expiresAt must not be negative")
	}
	return nil
}

// =================================================================
// 订阅模板
// =================================================================

type TemplateInput struct {
	Name           *string `json:"name"`
	ProfileTitle   *string `json:"profileTitle"`
	UpdateInterval *int    `json:"updateInterval"`
	UpdateAlways   *bool   `json:"updateAlways"`
	Announce       *string `json:"announce"`
	AnnounceUrl    *string `json:"announceUrl"`
	Routing        *string `json:"routing"`
	TrafficTotal   *int64  `json:"trafficTotal"`
}

// CheckValid 校验模板字段，requireName 为 true 时 name 必填
func (t *TemplateInput) CheckValid(requireName bool) error {
	const op = "TemplateInput.CheckValid"
	if t.Name == nil {
		if requireName {
			return common.InvalidInput(op, "name is required")
		}
	} else if err := checkName(op, "name", *t.Name); err != nil {
		return err
	}
	if t.ProfileTitle != nil && len(*t.ProfileTitle) > maxTitleLen {
		return common.InvalidInput(op, "profileTitle must be at most %d characters", maxTitleLen)
	}
	if t.UpdateInterval != nil && *t.UpdateInterval < 0 {
		return common.InvalidInput(op, "updateInterval must not be negative")
	}
	if t.Announce != nil && len(*t.Announce) > maxAnnounceLen {
		return common.InvalidInput(op, "announce must be at most %d characters", maxAnnounceLen)
	}
	if t.AnnounceUrl != nil && *t.AnnounceUrl != "" {
		if err := checkHTTPURL(op, "announceUrl", *t.AnnounceUrl); err != nil {
			return err
		}
	}
	if t.TrafficTotal != nil && *t.TrafficTotal < 0 {
		return common.InvalidInput(op, "trafficTotal must not be negative")
	}
	return nil
}

func checkUsername(op, username string) error {
	if len(username) == 0 || len(username) > maxUsernameLen {
		return common.InvalidInput(op, "username must be 1-%d characters", maxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return common.InvalidInput(op, "username may only contain letters, digits, '_' and '-'")
	}
	return nil
}

func checkName(op, field, name string) error {
	if strings.TrimSpace(name) == "" || len(name) > maxNameLen {
		return common.InvalidInput(op, "%s must be 1-%d characters", field, maxNameLen)
	}
	return nil
}

func checkHTTPURL(op, field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return common.InvalidInput(op, "%s must be an absolute http(s) url", field)
	}
	return nil
}
