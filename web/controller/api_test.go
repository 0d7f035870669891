package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testToken = "admin-secret"

// stubPanel 最小化的内存面板
type stubPanel struct {
	mu      sync.Mutex
	down    bool
	clients []panel.RemoteClient
	nextId  int
}

func (p *stubPanel) Status(ctx context.Context) (*panel.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return nil, common.ErrConnectionFailed
	}
	return &panel.Status{Running: true}, nil
}

func (p *stubPanel) Load(ctx context.Context) (*panel.LoadData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return nil, common.ErrConnectionFailed
	}
	return &panel.LoadData{
		Inbounds: []panel.Inbound{{Id: 1, Tag: "vless-in", Type: "vless", ListenPort: 443}},
		Clients:  append([]panel.RemoteClient(nil), p.clients...),
	}, nil
}

func (p *stubPanel) CreateClient(ctx context.Context, data panel.ClientSaveData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextId++
	p.clients = append(p.clients, panel.RemoteClient{Id: p.nextId, Name: data.Name, Enable: data.Enable})
	return nil
}

func (p *stubPanel) UpdateClient(ctx context.Context, data panel.ClientSaveData) error { return nil }

func (p *stubPanel) DeleteClient(ctx context.Context, id int) error { return nil }

func (p *stubPanel) TestConnection(ctx context.Context) bool {
	_, err := p.Status(ctx)
	return err == nil
}

type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	panel  *stubPanel
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.CreateTestDB(s.T().TempDir())
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = database.CleanupTestDB(db) })

	s.panel = &stubPanel{}
	factory := func(baseURL, token string) panel.API { return s.panel }

	serverRepo := repository.NewServerRepository(db)
	inboundRepo := repository.NewInboundRepository(db)
	clientRepo := repository.NewClientRepository(db)
	csRepo := repository.NewClientServerRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	tplRepo := repository.NewSubscriptionTemplateRepository(db)

	s.router = gin.New()
	NewAPIController(s.router.Group("/"), testToken,
		service.NewServerService(serverRepo, inboundRepo, factory),
		service.NewClientService(clientRepo, csRepo, serverRepo, inboundRepo, subRepo, tplRepo, factory),
		service.NewSubscriptionTemplateService(tplRepo),
	)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Code    string          `json:"code"`
	Obj     json.RawMessage `json:"obj"`
}

func (s *APITestSuite) do(method, path string, body any) (int, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func (s *APITestSuite) createServer() int {
	code, resp := s.do(http.MethodPost, "/api/servers", map[string]any{
		"name": "node-1", "url": "https://node1.example.com", "apiToken": "t",
	})
	s.Require().Equal(http.StatusCreated, code, resp.Msg)
	var obj struct {
		Id int `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(resp.Obj, &obj))
	return obj.Id
}

func (s *APITestSuite) TestHealthNeedsNoAuth() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
	s.Contains(w.Body.String(), `"timestamp"`)
}

func (s *APITestSuite) TestRequiresBearerToken() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/servers", nil))
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestServerLifecycle() {
	id := s.createServer()

	code, resp := s.do(http.MethodGet, "/api/servers/"+itoa(id), nil)
	s.Equal(http.StatusOK, code)
	s.True(resp.Success)
	s.Contains(string(resp.Obj), `"vless-in"`)

	code, _ = s.do(http.MethodPost, "/api/servers/"+itoa(id)+"/sync", nil)
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, "/api/servers/"+itoa(id), nil)
	s.Equal(http.StatusOK, code)

	code, resp = s.do(http.MethodGet, "/api/servers/"+itoa(id), nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal(common.ErrCodeNotFound, resp.Code)
}

func (s *APITestSuite) TestServerErrorMapping() {
	code, resp := s.do(http.MethodPost, "/api/servers", map[string]any{"name": "x", "url": "ftp://bad", "apiToken": "t"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal(common.ErrCodeInvalidInput, resp.Code)

	s.panel.down = true
	code, resp = s.do(http.MethodPost, "/api/servers", map[string]any{"name": "x", "url": "https://down.example.com", "apiToken": "t"})
	s.Equal(http.StatusBadGateway, code)
	s.Equal(common.ErrCodeConnectionFailed, resp.Code)

	code, _ = s.do(http.MethodGet, "/api/servers/abc", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *APITestSuite) TestClientLifecycle() {
	serverId := s.createServer()

	code, resp := s.do(http.MethodPost, "/api/clients", map[string]any{
		"username": "alice", "serverIds": []int{serverId},
	})
	s.Require().Equal(http.StatusCreated, code, resp.Msg)
	var client struct {
		Id      int `json:"id"`
		Servers []struct {
			ServerId int    `json:"serverId"`
			Uuid     string `json:"uuid"`
		} `json:"servers"`
		Subscription struct {
			Token string `json:"token"`
		} `json:"subscription"`
	}
	s.Require().NoError(json.Unmarshal(resp.Obj, &client))
	s.Require().Len(client.Servers, 1)
	s.NotEmpty(client.Servers[0].Uuid)
	s.NotEmpty(client.Subscription.Token)

	code, resp = s.do(http.MethodPost, "/api/clients", map[string]any{
		"username": "alice", "serverIds": []int{serverId},
	})
	s.Equal(http.StatusConflict, code)
	s.Equal(common.ErrCodeDuplicate, resp.Code)

	code, resp = s.do(http.MethodPost, "/api/clients/"+itoa(client.Id)+"/servers/"+itoa(serverId), nil)
	s.Equal(http.StatusConflict, code, resp.Msg)

	code, resp = s.do(http.MethodPost, "/api/clients/"+itoa(client.Id)+"/subscription/regenerate", nil)
	s.Equal(http.StatusOK, code)
	s.NotContains(string(resp.Obj), client.Subscription.Token)

	code, _ = s.do(http.MethodDelete, "/api/clients/"+itoa(client.Id)+"/servers/"+itoa(serverId), nil)
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, "/api/clients/"+itoa(client.Id), nil)
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/clients/"+itoa(client.Id), nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *APITestSuite) TestTemplates() {
	code, resp := s.do(http.MethodPost, "/api/templates", map[string]any{"name": "default", "profileTitle": "Orbit"})
	s.Require().Equal(http.StatusCreated, code, resp.Msg)
	s.Contains(string(resp.Obj), `"updateInterval":24`)

	code, resp = s.do(http.MethodGet, "/api/templates", nil)
	s.Equal(http.StatusOK, code)
	s.Contains(string(resp.Obj), `"Orbit"`)

	code, _ = s.do(http.MethodPost, "/api/templates", map[string]any{"profileTitle": "no name"})
	s.Equal(http.StatusBadRequest, code)
}

func (s *APITestSuite) TestLogs() {
	code, resp := s.do(http.MethodGet, "/api/logs?count=5&level=DEBUG", nil)
	s.Equal(http.StatusOK, code)
	s.True(resp.Success)

	code, _ = s.do(http.MethodGet, "/api/logs?count=-1", nil)
	s.Equal(http.StatusBadRequest, code)
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		common.ErrCodeNotFound:         http.StatusNotFound,
		common.ErrCodeDuplicate:        http.StatusConflict,
		common.ErrCodeConflict:         http.StatusConflict,
		common.ErrCodeInvalidInput:     http.StatusBadRequest,
		common.ErrCodeConnectionFailed: http.StatusBadGateway,
		common.ErrCodeExternal:         http.StatusBadGateway,
		common.ErrCodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, statusFor(code), code)
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
