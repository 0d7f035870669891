package controller

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	BaseController

	templateService *service.SubscriptionTemplateService
}

func NewTemplateController(g *gin.RouterGroup, templateService *service.SubscriptionTemplateService) *TemplateController {
	a := &TemplateController{
		templateService: templateService,
	}
	a.initRouter(g)
	return a
}

func (a *TemplateController) initRouter(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.POST("", a.create)
	g.GET("/:id", a.get)
	g.PATCH("/:id", a.update)
	g.DELETE("/:id", a.delete)
}

func (a *TemplateController) list(c *gin.Context) {
	templates, err := a.templateService.GetTemplates()
	jsonObj(c, templates, err)
}

func (a *TemplateController) get(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	tpl, err := a.templateService.GetTemplate(id)
	jsonObj(c, tpl, err)
}

func (a *TemplateController) create(c *gin.Context) {
	input := &entity.TemplateInput{}
	if !a.bind(c, input) {
		return
	}
	tpl, err := a.templateService.CreateTemplate(input)
	jsonCreated(c, tpl, err)
}

func (a *TemplateController) update(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	input := &entity.TemplateInput{}
	if !a.bind(c, input) {
		return
	}
	tpl, err := a.templateService.UpdateTemplate(id, input)
	jsonObj(c, tpl, err)
}

func (a *TemplateController) delete(c *gin.Context) {
	id, ok := a.paramId(c, "id")
	if !ok {
		return
	}
	jsonMsg(c, "template deleted", a.templateService.DeleteTemplate(id))
}
