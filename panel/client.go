// Package panel 封装对远端 S-UI 面板 apiv2 接口的访问
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
)

const (
	readAttempts  = 3
	writeAttempts = 2

	defaultTimeout    = 15 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
)

// API 是单个面板实例的操作集合
type API interface {
	Status(ctx context.Context) (*Status, error)
	Load(ctx context.Context) (*LoadData, error)
	CreateClient(ctx context.Context, data ClientSaveData) error
	UpdateClient(ctx context.Context, data ClientSaveData) error
	DeleteClient(ctx context.Context, id int) error
	TestConnection(ctx context.Context) bool
}

// Factory 按 (url, token) 构造面板客户端，每次调用都应新建
type Factory func(baseURL, token string) API

type Option func(*Client)

// Client 绑定一个面板地址与令牌
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryDelay time.Duration
}

var _ API = (*Client)(nil)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// NewClient 创建面板客户端，baseURL 末尾的 / 会被去掉
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status 获取面板运行状态
func (c *Client) Status(ctx context.Context) (*Status, error) {
	return get[Status](ctx, c, "panel.Status", "status")
}

// Load 获取面板的完整快照
func (c *Client) Load(ctx context.Context) (*LoadData, error) {
	return get[LoadData](ctx, c, "panel.Load", "load")
}

func (c *Client) CreateClient(ctx context.Context, data ClientSaveData) error {
	return c.save(ctx, "panel.CreateClient", "clients", "new", data)
}

func (c *Client) UpdateClient(ctx context.Context, data ClientSaveData) error {
	return c.save(ctx, "panel.UpdateClient", "clients", "edit", data)
}

func (c *Client) DeleteClient(ctx context.Context, id int) error {
	return c.save(ctx, "panel.DeleteClient", "clients", "del", id)
}

// TestConnection 探测面板是否可用，不返回错误
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.Status(ctx)
	if err != nil {
		logger.Debugf("[panel] connection test to %s failed: %v", c.baseURL, err)
		return false
	}
	return true
}

func (c *Client) connectionFailed(op, endpoint string, cause error) error {
	return common.NewServiceError(op, fmt.Errorf("%w: %s: %w", common.ErrConnectionFailed, c.baseURL, cause)).
		WithCode(common.ErrCodeConnectionFailed).
		WithContext("url", c.baseURL).
		WithContext("endpoint", endpoint)
}

func (c *Client) apiError(op, endpoint, msg string) error {
	if msg == "" {
		msg = "operation failed"
	}
	return common.NewServiceError(op, fmt.Errorf("%w: %s", common.ErrExternalAPI, msg)).
		WithCode(common.ErrCodeExternal).
		WithContext("url", c.baseURL).
		WithContext("endpoint", endpoint)
}

// do 执行一次请求，网络错误、非 2xx 和读取失败都视为连接失败
func (c *Client) do(ctx context.Context, op, method, endpoint string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/apiv2/"+endpoint, body)
	if err != nil {
		return nil, c.connectionFailed(op, endpoint, err)
	}
	req.Header.Set("Token", c.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Errorf("[panel] %s %s on %s failed: %v", method, endpoint, c.baseURL, err)
		return nil, c.connectionFailed(op, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Errorf("[panel] %s %s on %s returned HTTP %d", method, endpoint, c.baseURL, resp.StatusCode)
		return nil, c.connectionFailed(op, endpoint, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.connectionFailed(op, endpoint, err)
	}
	return data, nil
}

// retryOptions 只重试连接类错误，调用方的 ctx 结束后不再重试
func (c *Client) retryOptions(ctx context.Context, attempts int, endpoint string) common.RetryOptions {
	return common.RetryOptions{
		Retries: attempts,
		Delay:   c.retryDelay,
		ShouldRetry: func(err error) bool {
			// 传输层超时仍可重试，调用方取消或超时则立即返回
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return false
			}
			return common.IsTransportError(err)
		},
		OnRetry: func(attempt int, err error) {
			logger.Warningf("[panel] retrying %s on %s (attempt %d): %v", endpoint, c.baseURL, attempt, err)
		},
	}
}

// get 读取 envelope 中的 obj，success=false 或缺少 obj 时返回 ExternalApiError
func get[T any](ctx context.Context, c *Client, op, endpoint string) (*T, error) {
	return common.Retry(func() (*T, error) {
		start := time.Now()
		obj, err := getOnce[T](ctx, c, op, endpoint)
		observe(endpoint, outcomeOf(err), start)
		return obj, err
	}, c.retryOptions(ctx, readAttempts, endpoint))
}

func getOnce[T any](ctx context.Context, c *Client, op, endpoint string) (*T, error) {
	data, err := c.do(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var env Response[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, c.connectionFailed(op, endpoint, fmt.Errorf("decode response: %w", err))
	}
	if !env.Success || env.Obj == nil {
		return nil, c.apiError(op, endpoint, env.Msg)
	}
	return env.Obj, nil
}

// save 以表单形式提交 object/action/data
func (c *Client) save(ctx context.Context, op, object, action string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return common.NewServiceError(op, err).WithCode(common.ErrCodeInternal)
	}
	form := url.Values{}
	form.Set("object", object)
	form.Set("action", action)
	form.Set("data", string(payload))

	endpoint := "save"
	return common.RetryErr(func() error {
		start := time.Now()
		err := c.saveOnce(ctx, op, endpoint, form)
		observe(endpoint, outcomeOf(err), start)
		if err == nil {
			logger.Debugf("[panel] save %s/%s on %s completed", object, action, c.baseURL)
		}
		return err
	}, c.retryOptions(ctx, writeAttempts, endpoint+"/"+object+"/"+action))
}

func (c *Client) saveOnce(ctx context.Context, op, endpoint string, form url.Values) error {
	data, err := c.do(ctx, op, http.MethodPost, endpoint, form)
	if err != nil {
		return err
	}
	var env Response[json.RawMessage]
	if err := json.Unmarshal(data, &env); err != nil {
		return c.connectionFailed(op, endpoint, fmt.Errorf("decode response: %w", err))
	}
	if !env.Success {
		logger.Errorf("[panel] save %s/%s on %s rejected: %s", form.Get("object"), form.Get("action"), c.baseURL, env.Msg)
		return c.apiError(op, endpoint, env.Msg)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case common.IsTransportError(err):
		return outcomeConnectionFailed
	default:
		return outcomeAPIError
	}
}

// String 便于日志输出，不包含令牌
func (c *Client) String() string {
	return fmt.Sprintf("panel(%s, timeout=%s)", c.baseURL, c.httpClient.Timeout)
}
