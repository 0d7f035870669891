package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware 捕获所有 panic，防止服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 连接断开导致的 panic 只记录，不打印堆栈
				if isBrokenPipe(err) {
					logger.Errorf("[PANIC RECOVER] Broken pipe: %v", err)
					c.Abort()
					return
				}

				if config.IsDebug() {
					logger.Errorf("[PANIC RECOVER] panic recovered:\nError: %v\nStack: %s", err, debug.Stack())
				} else {
					logger.Errorf("[PANIC RECOVER] panic recovered: %v", err)
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"msg":     "internal server error",
				})
			}
		}()
		c.Next()
	}
}

func isBrokenPipe(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
