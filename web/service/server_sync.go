package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
	"github.com/sing-box-orbit/sing-box-orbit-back/panel"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"

	"gorm.io/gorm"
)

// SyncResult 一次入站同步的统计
type SyncResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
	Skipped   int `json:"skipped"`
}

// Changed 本次同步是否写入了任何入站行
func (r *SyncResult) Changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
}

// SyncInbounds 以服务器状态作为咨询锁，拉取面板快照并收敛本地入站目录
func (s *ServerService) SyncInbounds(ctx context.Context, server *model.Server) (*SyncResult, error) {
	const op = "ServerService.SyncInbounds"

	staleBefore := time.Now().Add(-config.GetSyncStaleAfter()).Unix()
	acquired, err := s.serverRepo.TryBeginSync(server.Id, staleBefore)
	if err != nil {
		return nil, common.Wrap(op, err)
	}
	if !acquired {
		return nil, common.NewServiceError(op, fmt.Errorf("%w: server %d", common.ErrSyncInProgress, server.Id)).
			WithCode(common.ErrCodeConflict).
			WithContext("serverId", server.Id)
	}

	result, err := s.reconcile(ctx, server)
	if err != nil {
		logger.Errorf("inbound sync for server %d (%s) failed: %v", server.Id, server.Name, err)
		if ferr := s.serverRepo.FinishSync(server.Id, model.ServerError, 0); ferr != nil {
			logger.Warningf("failed to mark server %d as error: %v", server.Id, ferr)
		}
		return nil, err
	}

	logger.Infof("server %d synced: +%d ~%d -%d (=%d, skipped %d)",
		server.Id, result.Created, result.Updated, result.Deleted, result.Unchanged, result.Skipped)
	return result, nil
}

// reconcile 拉取快照后在一个事务内写入入站并把状态置为 online
func (s *ServerService) reconcile(ctx context.Context, server *model.Server) (*SyncResult, error) {
	data, err := s.panels(server.Url, server.ApiToken).Load(ctx)
	if err != nil {
		return nil, err
	}
	return database.WithTxResult(s.inboundRepo.GetDB(), func(tx *gorm.DB) (*SyncResult, error) {
		result, err := applySnapshot(s.inboundRepo.WithTx(tx), server.Id, data.Inbounds, data.Tls)
		if err != nil {
			return nil, err
		}
		if err := s.serverRepo.WithTx(tx).FinishSync(server.Id, model.ServerOnline, time.Now().Unix()); err != nil {
			return nil, common.Wrap("ServerService.reconcile", err)
		}
		return result, nil
	})
}

// applySnapshot 按 (serverId, externalInboundId) 更新或插入入站，并删除快照中已不存在的入站
func applySnapshot(inboundRepo repository.InboundRepository, serverId int, inbounds []panel.Inbound, tls []panel.Tls) (*SyncResult, error) {
	const op = "ServerService.applySnapshot"

	existing, err := inboundRepo.FindByServerID(serverId)
	if err != nil {
		return nil, common.Wrap(op, err)
	}
	byExternal := make(map[int]*model.Inbound, len(existing))
	for _, in := range existing {
		byExternal[in.ExternalInboundId] = in
	}
	tlsById := make(map[int]*panel.Tls, len(tls))
	for i := range tls {
		tlsById[tls[i].Id] = &tls[i]
	}

	result := &SyncResult{}
	kept := make([]int, 0, len(inbounds))
	seen := make(map[int]bool, len(inbounds))

	for _, remote := range inbounds {
		typ, ok := model.ParseInboundType(remote.Type)
		if !ok || seen[remote.Id] {
			result.Skipped++
			continue
		}
		seen[remote.Id] = true
		kept = append(kept, remote.Id)
		settings := BuildInboundSettings(remote, tlsById)

		local, found := byExternal[remote.Id]
		if !found {
			err := inboundRepo.Create(&model.Inbound{
				ServerId:          serverId,
				ExternalInboundId: remote.Id,
				Tag:               remote.Tag,
				Type:              typ,
				Port:              remote.ListenPort,
				Enabled:           true,
				Settings:          settings,
			})
			if err != nil {
				return nil, common.Wrapf(op, err, "create inbound %d", remote.Id)
			}
			result.Created++
			continue
		}

		if local.Tag == remote.Tag && local.Type == typ && local.Port == remote.ListenPort && local.Settings.Equal(settings) {
			result.Unchanged++
			continue
		}
		local.Tag = remote.Tag
		local.Type = typ
		local.Port = remote.ListenPort
		local.Settings = settings
		if err := inboundRepo.UpdateSynced(local); err != nil {
			return nil, common.Wrapf(op, err, "update inbound %d", remote.Id)
		}
		result.Updated++
	}

	deleted, err := inboundRepo.DeleteByServerExcept(serverId, kept)
	if err != nil {
		return nil, common.Wrap(op, err)
	}
	result.Deleted = int(deleted)
	return result, nil
}

// BuildInboundSettings 从入站关联的 TLS 配置推导规范化安全参数，没有任何参数时返回 nil
func BuildInboundSettings(inbound panel.Inbound, tlsById map[int]*panel.Tls) *model.InboundSettings {
	if inbound.TlsId == nil || *inbound.TlsId == 0 {
		return nil
	}
	tls, ok := tlsById[*inbound.TlsId]
	if !ok {
		return nil
	}

	settings := &model.InboundSettings{}
	if tls.Server.Enabled {
		settings.TLS = true
		settings.ServerName = tls.Server.ServerName
	}

	if reality := tls.Server.Reality; reality != nil && reality.Enabled {
		settings.Reality = true
		settings.Flow = panel.FlowVision
		if tls.Client != nil && tls.Client.Reality != nil {
			settings.PublicKey = tls.Client.Reality.PublicKey
		}
		if len(reality.ShortId) > 0 {
			settings.ShortId = reality.ShortId[0]
		}
		if reality.Handshake != nil && reality.Handshake.Server != "" {
			settings.ServerName = reality.Handshake.Server
		}
	}

	if settings.IsEmpty() {
		return nil
	}
	return settings
}
