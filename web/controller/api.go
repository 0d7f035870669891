package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/middleware"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-gonic/gin"
)

const defaultLogCount = 100

type APIController struct {
	BaseController

	serverController   *ServerController
	clientController   *ClientController
	templateController *TemplateController

	serverService   *service.ServerService
	clientService   *service.ClientService
	templateService *service.SubscriptionTemplateService
}

func NewAPIController(
	g *gin.RouterGroup,
	adminToken string,
	serverService *service.ServerService,
	clientService *service.ClientService,
	templateService *service.SubscriptionTemplateService,
) *APIController {
	a := &APIController{
		serverService:   serverService,
		clientService:   clientService,
		templateService: templateService,
	}
	a.initRouter(g, adminToken)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, adminToken string) {
	api := g.Group("/api")

	// 健康检查不需要鉴权，供负载均衡探测
	api.GET("/health", a.health)

	authed := api.Group("")
	authed.Use(middleware.BearerAuthMiddleware(adminToken))

	a.serverController = NewServerController(authed.Group("/servers"), a.serverService)
	a.clientController = NewClientController(authed.Group("/clients"), a.clientService)
	a.templateController = NewTemplateController(authed.Group("/templates"), a.templateService)

	authed.GET("/logs", a.getLogs)
}

func (a *APIController) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   config.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// getLogs 返回内存中最近的日志，count 与 level 可选
func (a *APIController) getLogs(c *gin.Context) {
	count := defaultLogCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			pureJsonMsg(c, http.StatusBadRequest, false, "invalid count")
			return
		}
		count = n
	}
	level := c.DefaultQuery("level", "INFO")
	logs := logger.GetLogs(count, level)
	if logs == nil {
		logs = []string{}
	}
	jsonObj(c, logs, nil)
}
