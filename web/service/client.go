package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientService 维护客户端记录，并把客户端下发到一个或多个面板
type ClientService struct {
	clientRepo       repository.ClientRepository
	clientServerRepo repository.ClientServerRepository
	serverRepo       repository.ServerRepository
	inboundRepo      repository.InboundRepository
	subRepo          repository.SubscriptionRepository
	templateRepo     repository.SubscriptionTemplateRepository
	panels           panel.Factory
}

// NewClientService 创建 ClientService 实例，通过构造函数注入 Repository
func NewClientService(
	clientRepo repository.ClientRepository,
	clientServerRepo repository.ClientServerRepository,
	serverRepo repository.ServerRepository,
	inboundRepo repository.InboundRepository,
	subRepo repository.SubscriptionRepository,
	templateRepo repository.SubscriptionTemplateRepository,
	panels panel.Factory,
) *ClientService {
	return &ClientService{
		clientRepo:       clientRepo,
		clientServerRepo: clientServerRepo,
		serverRepo:       serverRepo,
		inboundRepo:      inboundRepo,
		subRepo:          subRepo,
		templateRepo:     templateRepo,
		panels:           panels,
	}
}

// =============================================================================
// 查询
// =============================================================================

func (s *ClientService) GetClients() ([]*model.Client, error) {
	return s.clientRepo.FindAll()
}

func (s *ClientService) GetClient(id int) (*model.Client, error) {
	client, err := s.clientRepo.FindByIDWithRelations(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound("ClientService.GetClient", "Client", id)
		}
		return nil, err
	}
	return client, nil
}

// =============================================================================
// 多服务器操作（尽力而为）
// =============================================================================

// CreateClient 在本地创建客户端与订阅后并行下发到各服务器，
// 单台服务器失败只记录日志，绑定行只为成功的服务器写入
func (s *ClientService) CreateClient(ctx context.Context, input *entity.ClientCreate) (*model.Client, error) {
	const op = "ClientService.CreateClient"
	ctx = context.WithoutCancel(ctx)
	if err := input.CheckValid(); err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(op, input.Username); err != nil {
		return nil, err
	}
	if err := s.checkTemplate(op, input.SubscriptionTemplateId); err != nil {
		return nil, err
	}

	serverIds := uniqueInts(input.ServerIds)
	servers, err := s.serverRepo.FindByIDs(serverIds)
	if err != nil {
		return nil, common.Wrap(op, err)
	}
	if len(servers) != len(serverIds) {
		return nil, common.NotFound(op, "Server", missingIds(serverIds, servers))
	}

	client := &model.Client{
		Username:               input.Username,
		Email:                  input.Email,
		Enabled:                true,
		ExpiresAt:              input.ExpiresAt,
		SubscriptionTemplateId: input.SubscriptionTemplateId,
	}
	if err := s.clientRepo.CreateWithSubscription(client, uuid.NewString()); err != nil {
		return nil, s.storeError(op, "Client", "username", client.Username, err)
	}
	logger.Infof("client %d (%s) created", client.Id, client.Username)

	assignments := make([]*model.ClientServer, len(servers))
	errs := forEachParallel(len(servers), func(i int) error {
		cs, err := s.provision(ctx, client, servers[i])
		assignments[i] = cs
		return err
	})

	// 绑定行在同一事务中逐行写入，单行失败不影响其他服务器
	err = database.WithTx(s.clientRepo.GetDB(), func(tx *gorm.DB) error {
		links := s.clientServerRepo.WithTx(tx)
		for i, server := range servers {
			if errs[i] != nil {
				logger.Errorf("failed to create client %s on server %d (%s): %v", client.Username, server.Id, server.Name, errs[i])
				continue
			}
			if err := links.Create(assignments[i]); err != nil {
				logger.Errorf("failed to save assignment of client %s to server %d: %v", client.Username, server.Id, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Errorf("failed to save assignments of client %s: %v", client.Username, err)
	}

	return s.GetClient(client.Id)
}

// UpdateClient 先更新本地记录，再尽力把名称和启用状态推送到已分配的服务器
func (s *ClientService) UpdateClient(ctx context.Context, id int, input *entity.ClientUpdate) (*model.Client, error) {
	const op = "ClientService.UpdateClient"
	ctx = context.WithoutCancel(ctx)
	if err := input.CheckValid(); err != nil {
		return nil, err
	}
	existing, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}
	if input.Username != nil && *input.Username != existing.Username {
		if err := s.checkUsernameFree(op, *input.Username); err != nil {
			return nil, err
		}
	}
	if err := s.checkTemplate(op, input.SubscriptionTemplateId); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Username != nil {
		fields["username"] = *input.Username
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.Enabled != nil {
		fields["enabled"] = *input.Enabled
	}
	if input.ExpiresAt != nil {
		fields["expires_at"] = *input.ExpiresAt
	}
	if input.SubscriptionTemplateId != nil {
		fields["subscription_template_id"] = *input.SubscriptionTemplateId
	} else if input.ClearTemplate {
		fields["subscription_template_id"] = nil
	}
	if len(fields) > 0 {
		if err := s.clientRepo.Updates(id, fields); err != nil {
			return nil, s.storeError(op, "Client", "username", fields["username"], err)
		}
	}

	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	errs := forEachParallel(len(client.Servers), func(i int) error {
		cs := client.Servers[i]
		if cs.Server == nil {
			return fmt.Errorf("server %d not loaded", cs.ServerId)
		}
		inbounds, err := s.inboundRepo.GetEnabledExternalIDs(cs.ServerId)
		if err != nil {
			return err
		}
		return s.panels(cs.Server.Url, cs.Server.ApiToken).UpdateClient(ctx, panel.ClientSaveData{
			Id:       cs.ExternalClientId,
			Enable:   client.Enabled,
			Name:     client.Username,
			Inbounds: inbounds,
			Config:   panel.VlessConfig(client.Username, cs.Uuid),
		})
	})
	for i, err := range errs {
		if err != nil {
			logger.Errorf("failed to update client %s on server %d: %v", client.Username, client.Servers[i].ServerId, err)
		}
	}

	return client, nil
}

// DeleteClient 尽力删除各面板上的客户端，然后无条件级联删除本地记录
func (s *ClientService) DeleteClient(ctx context.Context, id int) error {
	const op = "ClientService.DeleteClient"
	ctx = context.WithoutCancel(ctx)
	client, err := s.GetClient(id)
	if err != nil {
		return err
	}

	errs := forEachParallel(len(client.Servers), func(i int) error {
		cs := client.Servers[i]
		if cs.Server == nil {
			return fmt.Errorf("server %d not loaded", cs.ServerId)
		}
		return s.panels(cs.Server.Url, cs.Server.ApiToken).DeleteClient(ctx, cs.ExternalClientId)
	})
	for i, err := range errs {
		if err != nil {
			logger.Errorf("failed to delete client %s from server %d: %v", client.Username, client.Servers[i].ServerId, err)
		}
	}

	if err := s.clientRepo.DeleteCascade(id); err != nil {
		return common.Wrap(op, err)
	}
	logger.Infof("client %d (%s) deleted", client.Id, client.Username)
	return nil
}

// =============================================================================
// 单服务器操作
// =============================================================================

// AddToServer 把客户端下发到单台服务器，面板创建或重新加载后找不到客户端都会使调用失败
func (s *ClientService) AddToServer(ctx context.Context, clientId, serverId int) (*model.Client, error) {
	const op = "ClientService.AddToServer"
	ctx = context.WithoutCancel(ctx)
	client, err := s.clientRepo.FindByID(clientId)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound(op, "Client", clientId)
		}
		return nil, common.Wrap(op, err)
	}
	server, err := s.serverRepo.FindByID(serverId)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound(op, "Server", serverId)
		}
		return nil, common.Wrap(op, err)
	}
	exists, err := s.clientServerRepo.Exists(clientId, serverId)
	if err != nil {
		return nil, common.Wrap(op, err)
	}
	if exists {
		return nil, common.Duplicate(op, "ClientServer", "assignment", fmt.Sprintf("%d:%d", clientId, serverId))
	}

	cs, err := s.provision(ctx, client, server)
	if err != nil {
		return nil, err
	}
	if err := s.clientServerRepo.Create(cs); err != nil {
		return nil, s.storeError(op, "ClientServer", "assignment", fmt.Sprintf("%d:%d", clientId, serverId), err)
	}
	logger.Infof("client %s added to server %d", client.Username, serverId)
	return s.GetClient(clientId)
}

// RemoveFromServer 尽力删除面板上的客户端，本地绑定总会被删除
func (s *ClientService) RemoveFromServer(ctx context.Context, clientId, serverId int) (*model.Client, error) {
	const op = "ClientService.RemoveFromServer"
	ctx = context.WithoutCancel(ctx)
	cs, err := s.clientServerRepo.Find(clientId, serverId)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound(op, "ClientServer assignment", fmt.Sprintf("%d:%d", clientId, serverId))
		}
		return nil, common.Wrap(op, err)
	}

	if cs.Server != nil {
		if err := s.panels(cs.Server.Url, cs.Server.ApiToken).DeleteClient(ctx, cs.ExternalClientId); err != nil {
			logger.Errorf("failed to delete client %d from server %d (%s): %v", clientId, serverId, cs.Server.Name, err)
		}
	}

	if err := s.clientServerRepo.Delete(clientId, serverId); err != nil {
		return nil, common.Wrap(op, err)
	}
	return s.GetClient(clientId)
}

// RegenerateSubscriptionToken 更换订阅令牌，订阅不存在时新建
func (s *ClientService) RegenerateSubscriptionToken(clientId int) (*model.Client, error) {
	const op = "ClientService.RegenerateSubscriptionToken"
	token := uuid.NewString()
	err := database.WithTx(s.clientRepo.GetDB(), func(tx *gorm.DB) error {
		if _, err := s.clientRepo.WithTx(tx).FindByID(clientId); err != nil {
			if database.IsNotFound(err) {
				return common.NotFound(op, "Client", clientId)
			}
			return err
		}
		subs := s.subRepo.WithTx(tx)
		sub, err := subs.FindByClientID(clientId)
		switch {
		case database.IsNotFound(err):
			return subs.Create(&model.Subscription{ClientId: clientId, Token: token})
		case err != nil:
			return err
		}
		return subs.UpdateToken(sub.Id, token)
	})
	if err != nil {
		if common.IsNotFoundError(err) {
			return nil, err
		}
		return nil, common.Wrap(op, err)
	}
	return s.GetClient(clientId)
}

// provision 在面板上创建客户端，再重新加载快照按名称找回面板分配的 id
func (s *ClientService) provision(ctx context.Context, client *model.Client, server *model.Server) (*model.ClientServer, error) {
	const op = "ClientService.provision"
	inbounds, err := s.inboundRepo.GetEnabledExternalIDs(server.Id)
	if err != nil {
		return nil, common.Wrap(op, err)
	}

	id := uuid.NewString()
	api := s.panels(server.Url, server.ApiToken)
	err = api.CreateClient(ctx, panel.ClientSaveData{
		Enable:   client.Enabled,
		Name:     client.Username,
		Inbounds: inbounds,
		Config:   panel.VlessConfig(client.Username, id),
	})
	if err != nil {
		return nil, err
	}

	data, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}
	remote, ok := data.FindClientByName(client.Username)
	if !ok {
		return nil, common.NewServiceError(op, fmt.Errorf("%w: panel client %q on server %d", common.ErrNotFound, client.Username, server.Id)).
			WithCode(common.ErrCodeNotFound).
			WithContext("serverId", server.Id)
	}

	return &model.ClientServer{
		ClientId:         client.Id,
		ServerId:         server.Id,
		ExternalClientId: remote.Id,
		Uuid:             id,
	}, nil
}

func (s *ClientService) checkUsernameFree(op, username string) error {
	_, err := s.clientRepo.FindByUsername(username)
	if err == nil {
		return common.Duplicate(op, "Client", "username", username)
	}
	if !database.IsNotFound(err) {
		return common.Wrap(op, err)
	}
	return nil
}

// storeError 把唯一约束冲突转换为 Duplicate，用户名检查与写入之间的并发创建会走到这里
func (s *ClientService) storeError(op, resource, field string, value any, err error) error {
	if database.IsDuplicate(err) {
		return common.Duplicate(op, resource, field, value)
	}
	return common.Wrap(op, err)
}

func (s *ClientService) checkTemplate(op string, id *int) error {
	if id == nil {
		return nil
	}
	if _, err := s.templateRepo.FindByID(*id); err != nil {
		if database.IsNotFound(err) {
			return common.NotFound(op, "SubscriptionTemplate", *id)
		}
		return common.Wrap(op, err)
	}
	return nil
}

// forEachParallel 并发执行 fn(0..n-1)，返回与下标一一对应的错误
func forEachParallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: panic: %v", common.ErrInternal, r)
				}
			}()
			errs[i] = fn(i)
		}()
	}
	wg.Wait()
	return errs
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func missingIds(want []int, found []*model.Server) []int {
	have := make(map[int]bool, len(found))
	for _, s := range found {
		have[s.Id] = true
	}
	var missing []int
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
