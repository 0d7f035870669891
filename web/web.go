package web

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/controller"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/middleware"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cron "github.com/robfig/cron/v3"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	api *controller.APIController

	serverService   *service.ServerService
	clientService   *service.ClientService
	templateService *service.SubscriptionTemplateService

	cron *cron.Cron
}

func NewServer(
	serverService *service.ServerService,
	clientService *service.ClientService,
	templateService *service.SubscriptionTemplateService,
) *Server {
	return &Server{
		serverService:   serverService,
		clientService:   clientService,
		templateService: templateService,
	}
}

func (s *Server) initRouter() *gin.Engine {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RecoveryMiddleware())

	if domain := config.GetWebDomain(); domain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(domain))
	}

	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	adminToken := config.GetAdminToken()
	if adminToken == "" {
		logger.Warning("web.admin_token is empty, all admin API requests will be rejected")
	}

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(panel.Registry(), promhttp.HandlerOpts{})))

	g := engine.Group("/")
	s.api = controller.NewAPIController(g, adminToken, s.serverService, s.clientService, s.templateService)

	return engine
}

func (s *Server) Start() (err error) {
	// This is an anonymous function, no function name
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(
		cron.WithLogger(CronLogger{}),
		cron.WithChain(cron.Recover(CronLogger{}), cron.SkipIfStillRunning(CronLogger{})),
	)
	s.cron.Start()

	engine := s.initRouter()

	listenAddr := net.JoinHostPort(config.GetWebListen(), strconv.Itoa(config.GetWebPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// 写超时需要覆盖面板请求的重试耗时
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("web server stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1 error
	var err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCron() *cron.Cron {
	return s.cron
}
