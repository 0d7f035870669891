package sub

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
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/middleware"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/security"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	limiter    security.RateLimiter

	sub        *SUBController
	subService *SubService
}

func NewServer(subService *SubService) *Server {
	return &Server{
		subService: subService,
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

	if domain := config.GetSubDomain(); domain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(domain))
	}

	perSec, burst := config.GetSubRateLimit()
	s.limiter = security.NewRateLimiter(&security.RateLimitConfig{PerSecond: perSec, Burst: burst})
	for _, ip := range config.GetSubRateWhitelist() {
		s.limiter.AddWhitelist(ip)
	}
	engine.Use(middleware.RateLimitMiddleware(s.limiter))

	g := engine.Group("/")
	s.sub = NewSUBController(g, config.GetSubPath(), config.GetSubBaseURL(), s.subService)

	return engine
}

func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine := s.initRouter()

	listenAddr := net.JoinHostPort(config.GetSubListen(), strconv.Itoa(config.GetSubPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Sub server running HTTP on", listener.Addr())
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("sub server stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	if s.limiter != nil {
		s.limiter.Close()
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
