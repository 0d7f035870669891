package controller

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-gonic/gin"
)

type ClientController struct {
	BaseController

	clientService *service.ClientService
}

func NewClientController(g *gin.RouterGroup, clientService *service.ClientService) *ClientController {
	a := &ClientController{
		clientService: clientService,
	}
	a.initRouter(g)
	return a
}

func (a *ClientController) initRouter(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.POST("", a.create)
	g.GET("/:id", a.get)
	g.PATCH("/:id", a.update)
	g.DELETE("/:id", a.delete)
	g.POST("/:id/servers/:serverId", a.addToServer)
	g.DELETE("/:id/servers/:serverId", a.removeFromServer)
	g.POST("/:id/subscription/regenerate", a.regenerateToken)
}

func (a *ClientController) list(c *gin.Context) {
	clients, err := a.clientService.GetClients()
	jsonObj(c, clients, err)
}

func (a *ClientController) get(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	client, err := a.clientService.GetClient(id)
	jsonObj(c, client, err)
}

func (a *ClientController) create(c *gin.Context) {
	input := &entity.ClientCreate{}
	if !a.bind(c, input) {
		return
	}
	client, err := a.clientService.CreateClient(c.Request.Context(), input)
	jsonCreated(c, client, err)
}

func (a *ClientController) update(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	input := &entity.ClientUpdate{}
	if !a.bind(c, input) {
		return
	}
	client, err := a.clientService.UpdateClient(c.Request.Context(), id, input)
	jsonObj(c, client, err)
}

func (a *ClientController) delete(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	jsonMsg(c, "client deleted", a.clientService.DeleteClient(c.Request.Context(), id))
}

func (a *ClientController) addToServer(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	serverId, ok := a.paramId(c, "serverId")
	if !ok {
		return
	}
	client, err := a.clientService.AddToServer(c.Request.Context(), id, serverId)
	jsonObj(c, client, err)
}

func (a *ClientController) removeFromServer(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	serverId, ok := a.paramId(c, "serverId")
	if !ok {
		return
	}
	client, err := a.clientService.RemoveFromServer(c.Request.Context(), id, serverId)
	jsonObj(c, client, err)
}

func (a *ClientController) regenerateToken(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	client, err := a.clientService.RegenerateSubscriptionToken(id)
	jsonObj(c, client, err)
}
