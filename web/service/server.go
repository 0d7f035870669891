package service

import (
	"context"
	"fmt"

	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"
)

// ServerService 管理面板服务器记录及其入站目录
type ServerService struct {
	serverRepo  repository.ServerRepository
	inboundRepo repository.InboundRepository
	panels      panel.Factory
}

// NewServerService 创建 ServerService 实例，通过构造函数注入 Repository
func NewServerService(
	serverRepo repository.ServerRepository,
	inboundRepo repository.InboundRepository,
	panels panel.Factory,
) *ServerService {
	return &ServerService{
		serverRepo:  serverRepo,
		inboundRepo: inboundRepo,
		panels:      panels,
	}
}

// =============================================================================
// Server CRUD
// =============================================================================

func (s *ServerService) GetServers() ([]*model.Server, error) {
	return s.serverRepo.FindAll()
}

func (s *ServerService) GetServer(id int) (*model.Server, error) {
	server, err := s.serverRepo.FindByIDWithInbounds(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound("ServerService.GetServer", "Server", id)
		}
		return nil, err
	}
	return server, nil
}

// CreateServer 探测面板连通性后保存记录，并尽力同步一次入站
func (s *ServerService) CreateServer(ctx context.Context, input *entity.ServerCreate) (*model.Server, error) {
	const op = "ServerService.CreateServer"
	ctx = context.WithoutCancel(ctx)
	if err := input.CheckValid(); err != nil {
		return nil, err
	}

	if !s.panels(input.Url, input.ApiToken).TestConnection(ctx) {
		return nil, s.connectionFailed(op, input.Url)
	}

	server := &model.Server{
		Name:     input.Name,
		Url:      input.Url,
		ApiToken: input.ApiToken,
		Location: input.Location,
		Status:   model.ServerOnline,
	}
	if err := s.serverRepo.Create(server); err != nil {
		return nil, common.Wrap(op, err)
	}
	logger.Infof("server %d (%s) created", server.Id, server.Name)

	if _, err := s.SyncInbounds(ctx, server); err != nil {
		logger.Warningf("initial inbound sync for server %d failed: %v", server.Id, err)
	}

	return s.GetServer(server.Id)
}

// UpdateServer 更新服务器，地址或令牌变化时重新探测
func (s *ServerService) UpdateServer(ctx context.Context, id int, input *entity.ServerUpdate) (*model.Server, error) {
	const op = "ServerService.UpdateServer"
	ctx = context.WithoutCancel(ctx)
	if err := input.CheckValid(); err != nil {
		return nil, err
	}
	server, err := s.GetServer(id)
	if err != nil {
		return nil, err
	}

	if input.Url != nil || input.ApiToken != nil {
		url, token := server.Url, server.ApiToken
		if input.Url != nil {
			url = *input.Url
		}
		if input.ApiToken != nil {
			token = *input.ApiToken
		}
		if !s.panels(url, token).TestConnection(ctx) {
			return nil, s.connectionFailed(op, url)
		}
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Url != nil {
		fields["url"] = *input.Url
	}
	if input.ApiToken != nil {
		fields["api_token"] = *input.ApiToken
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if len(fields) > 0 {
		if err := s.serverRepo.Updates(id, fields); err != nil {
			return nil, common.Wrap(op, err)
		}
	}
	return s.GetServer(id)
}

// DeleteServer 删除服务器，入站与客户端绑定随之删除
func (s *ServerService) DeleteServer(id int) error {
	if _, err := s.GetServer(id); err != nil {
		return err
	}
	if err := s.serverRepo.Delete(id); err != nil {
		return common.Wrap("ServerService.DeleteServer", err)
	}
	logger.Infof("server %d deleted", id)
	return nil
}

// ResyncServer 显式同步入站，失败时返回错误
func (s *ServerService) ResyncServer(ctx context.Context, id int) (*model.Server, error) {
	ctx = context.WithoutCancel(ctx)
	server, err := s.GetServer(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.SyncInbounds(ctx, server); err != nil {
		return nil, err
	}
	return s.GetServer(id)
}

// SetInboundEnabled 修改入站的本地启用状态，同步不会覆盖该字段
func (s *ServerService) SetInboundEnabled(serverId, inboundId int, enabled bool) (*model.Inbound, error) {
	const op = "ServerService.SetInboundEnabled"
	inbound, err := s.inboundRepo.FindByID(inboundId)
	if err != nil || inbound.ServerId != serverId {
		if err == nil || database.IsNotFound(err) {
			return nil, common.NotFound(op, "Inbound", inboundId)
		}
		return nil, err
	}
	if err := s.inboundRepo.SetEnabled(inboundId, enabled); err != nil {
		return nil, common.Wrap(op, err)
	}
	inbound.Enabled = enabled
	return inbound, nil
}

func (s *ServerService) connectionFailed(op, url string) error {
	return common.NewServiceError(op, fmt.Errorf("%w: failed to connect to panel at %s", common.ErrConnectionFailed, url)).
		WithCode(common.ErrCodeConnectionFailed).
		WithContext("url", url)
}
