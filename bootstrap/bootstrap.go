package bootstrap

import (
	"log"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/sub"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/joho/godotenv"
)

// App 封装应用运行时所需的所有服务实例
type App struct {
	ServerService   *service.ServerService
	ClientService   *service.ClientService
	TemplateService *service.SubscriptionTemplateService
	SubService      *sub.SubService
}

// NewApp 创建并初始化应用实例
func NewApp(
	serverService *service.ServerService,
	clientService *service.ClientService,
	templateService *service.SubscriptionTemplateService,
	subService *sub.SubService,
) *App {
	return &App{
		ServerService:   serverService,
		ClientService:   clientService,
		TemplateService: templateService,
		SubService:      subService,
	}
}

// InitDatabase 初始化数据库连接
func InitDatabase() error {
	return database.InitDB(config.GetDBPath())
}

// InitLogger 根据配置初始化日志系统
func InitLogger() {
	var level logger.Level
	switch config.GetLogLevel() {
	case config.Debug:
		level = logger.DEBUG
	case config.Info:
		level = logger.INFO
	case config.Notice:
		level = logger.NOTICE
	case config.Warning:
		level = logger.WARNING
	case config.Error:
		level = logger.ERROR
	default:
		log.Fatalf("Unknown log level: %v", config.GetLogLevel())
	}

	logger.InitLogger(level)
}

// LoadEnv 加载 .env 中的环境变量，文件不存在时忽略
func LoadEnv() {
	_ = godotenv.Load()
}

// Initialize 执行完整的应用初始化流程
func Initialize() (*App, error) {
	LoadEnv()
	InitLogger()

	log.Printf("Starting %v %v", config.GetName(), config.GetVersion())

	if err := InitDatabase(); err != nil {
		return nil, err
	}

	return InitializeApp()
}
