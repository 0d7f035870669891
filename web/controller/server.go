package controller

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-gonic/gin"
)

type ServerController struct {
	BaseController

	serverService *service.ServerService
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService) *ServerController {
	a := &ServerController{
		serverService: serverService,
	}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.POST("", a.create)
	g.GET("/:id", a.get)
	g.PATCH("/:id", a.update)
	g.DELETE("/:id", a.delete)
	g.POST("/:id/sync", a.resync)
	g.PATCH("/:id/inbounds/:inboundId", a.setInboundEnabled)
}

func (a *ServerController) list(c *gin.Context) {
	servers, err := a.serverService.GetServers()
	jsonObj(c, servers, err)
}

func (a *ServerController) get(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	server, err := a.serverService.GetServer(id)
	jsonObj(c, server, err)
}

func (a *ServerController) create(c *gin.Context) {
	input := &entity.ServerCreate{}
	if !a.bind(c, input) {
		return
	}
	server, err := a.serverService.CreateServer(c.Request.Context(), input)
	jsonCreated(c, server, err)
}

func (a *ServerController) update(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	input := &entity.ServerUpdate{}
	if !a.bind(c, input) {
		return
	}
	server, err := a.serverService.UpdateServer(c.Request.Context(), id, input)
	jsonObj(c, server, err)
}

func (a *ServerController) delete(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	jsonMsg(c, "server deleted", a.serverService.DeleteServer(id))
}

func (a *ServerController) resync(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	server, err := a.serverService.ResyncServer(c.Request.Context(), id)
	jsonObj(c, server, err)
}

type inboundToggle struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (a *ServerController) setInboundEnabled(c *gin.Context) {
	serverId, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	inboundId, ok := a.paramId(c, "inboundId")
	if !ok {
		return
	}
	input := &inboundToggle{}
	if !a.bind(c, input) {
		return
	}
	inbound, err := a.serverService.SetInboundEnabled(serverId, inboundId, *input.Enabled)
	jsonObj(c, inbound, err)
}
