package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"

	"github.com/gin-gonic/gin"
)

type BaseController struct{}

// paramId 解析路径参数中的整型 id，失败时直接写出 400
func (a *BaseController) paramId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bind 解析 JSON 请求体，失败时按 INVALID_INPUT 写出
func (a *BaseController) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		jsonFail(c, common.InvalidInput("bind", "%v", err))
		return false
	}
	return true
}

// statusFor 错误码到 HTTP 状态码的映射
func statusFor(code string) int {
	switch code {
	case common.ErrCodeNotFound:
		return http.StatusNotFound
	case common.ErrCodeDuplicate, common.ErrCodeConflict:
		return http.StatusConflict
	case common.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case common.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case common.ErrCodeConnectionFailed, common.ErrCodeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage 对外返回的错误信息，内部错误不暴露细节
func errorMessage(code string, err error) string {
	if code != common.ErrCodeInternal {
		var se *common.ServiceError
		if errors.As(err, &se) && se.Err != nil {
			return se.Err.Error()
		}
		return err.Error()
	}
	return "internal error"
}

func jsonFail(c *gin.Context, err error) {
	code := common.GetErrorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debugf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, entityMsg(false, errorMessage(code, err), code, nil))
}
