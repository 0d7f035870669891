package sub

import (
	"errors"
	"net/http"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type SUBController struct {
	subPath    string
	baseURL    string
	subService *SubService
}

func NewSUBController(g *gin.RouterGroup, subPath, baseURL string, subService *SubService) *SUBController {
	a := &SUBController{
		subPath:    subPath,
		baseURL:    baseURL,
		subService: subService,
	}
	a.initRouter(g)
	return a
}

func (a *SUBController) initRouter(g *gin.RouterGroup) {
	gLink := g.Group(a.subPath)
	gLink.GET("/:token", a.subs)
	gLink.GET("/:token/qr", a.qr)
}

func (a *SUBController) subs(c *gin.Context) {
	token := c.Param("token")
	result, err := a.subService.GetSubscription(token, c.Query("format"))
	if err != nil {
		a.fail(c, err)
		return
	}

	for k, v := range result.Headers {
		c.Header(k, v)
	}
	c.Data(http.StatusOK, result.ContentType, []byte(result.Body))
}

// qr 返回订阅地址的二维码，令牌无效时与订阅接口返回同样的状态码
func (a *SUBController) qr(c *gin.Context) {
	token := c.Param("token")
	if _, err := a.subService.Resolve(token); err != nil {
		a.fail(c, err)
		return
	}

	link := a.subscriptionURL(c, token)
	if format := c.Query("format"); format != "" {
		if _, ok := ParseFormat(format); !ok {
			a.fail(c, common.InvalidInput("SUBController.qr", "Unknown format: %s", format))
			return
		}
		link += "?format=" + format
	}

	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		logger.Errorf("encode subscription qr code failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png)
}

func (a *SUBController) subscriptionURL(c *gin.Context, token string) string {
	base := a.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + a.subPath + "/" + token
}

func (a *SUBController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid subscription token"})
	case errors.Is(err, ErrDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription is disabled"})
	case errors.Is(err, ErrExpired):
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription has expired"})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("serve subscription failed: %v", err)
		if config.IsDebug() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
