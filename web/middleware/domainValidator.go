package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"

	"github.com/gin-gonic/gin"
)

// DomainValidatorMiddleware 只放行 Host 与 domain 一致的请求（忽略端口和大小写）
func DomainValidatorMiddleware(domain string) gin.HandlerFunc {
	want := strings.Trim(domain, "[]")
	return func(c *gin.Context) {
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.Trim(host, "[]")

		if !strings.EqualFold(host, want) {
			logger.Warningf("Domain validation failed: expected %s, got %s from %s", domain, host, c.ClientIP())
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
