package controller

import (
	"net/http"

	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"

	"github.com/gin-gonic/gin"
)

func entityMsg(success bool, msg, code string, obj any) entity.Msg {
	return entity.Msg{Success: success, Msg: msg, Code: code, Obj: obj}
}

// jsonMsg err 为 nil 时返回成功消息，否则按错误码写出
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, entityMsg(true, msg, "", obj))
}

// jsonCreated 创建成功返回 201
func jsonCreated(c *gin.Context, obj any, err error) {
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entityMsg(true, "", "", obj))
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entityMsg(success, msg, "", nil))
}
