package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// ServerRepository 定义 Server 数据访问接口
type ServerRepository interface {
	FindByID(id int) (*model.Server, error)
	FindByIDWithInbounds(id int) (*model.Server, error)
	FindByIDs(ids []int) ([]*model.Server, error)
	FindAll() ([]*model.Server, error)
	Create(server *model.Server) error
	Updates(id int, fields map[string]any) error
	// Delete 删除服务器及其入站和客户端绑定
	Delete(id int) error

	// TryBeginSync 将状态原子地切换为 syncing；服务器已在同步且 updated_at
	// 不早于 staleBefore 时返回 false
	TryBeginSync(id int, staleBefore int64) (bool, error)
	// FinishSync 写入同步结果，lastSyncAt 为 0 时保留原值
	FinishSync(id int, status model.ServerStatus, lastSyncAt int64) error

	WithTx(tx *gorm.DB) ServerRepository
}

type serverRepository struct {
	db *gorm.DB
}

// NewServerRepository 创建新的 ServerRepository 实例
func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) WithTx(tx *gorm.DB) ServerRepository {
	return &serverRepository{db: tx}
}

func (r *serverRepository) FindByID(id int) (*model.Server, error) {
	server := &model.Server{}
	if err := r.db.Model(model.Server{}).First(server, id).Error; err != nil {
		return nil, err
	}
	return server, nil
}

func (r *serverRepository) FindByIDWithInbounds(id int) (*model.Server, error) {
	server := &model.Server{}
	err := r.db.Model(model.Server{}).
		Preload("Inbounds", func(db *gorm.DB) *gorm.DB { return db.Order("external_inbound_id") }).
		First(server, id).Error
	if err != nil {
		return nil, err
	}
	return server, nil
}

// FindByIDs 按 id 批量查找，结果顺序与 ids 无关，不存在的 id 会被忽略
func (r *serverRepository) FindByIDs(ids []int) ([]*model.Server, error) {
	var servers []*model.Server
	if len(ids) == 0 {
		return servers, nil
	}
	err := r.db.Model(model.Server{}).Preload("Inbounds").Where("id IN ?", ids).Order("id").Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (r *serverRepository) FindAll() ([]*model.Server, error) {
	var servers []*model.Server
	err := r.db.Model(model.Server{}).Preload("Inbounds").Order("id").Find(&servers).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return servers, nil
}

func (r *serverRepository) Create(server *model.Server) error {
	return r.db.Create(server).Error
}

func (r *serverRepository) Updates(id int, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&model.Server{Id: id}).Updates(fields).Error
}

func (r *serverRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", id).Delete(&model.ClientServer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", id).Delete(&model.Inbound{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Server{}, id).Error
	})
}

func (r *serverRepository) TryBeginSync(id int, staleBefore int64) (bool, error) {
	res := r.db.Model(&model.Server{}).
		Where("id = ? AND (status <> ? OR updated_at < ?)", id, model.ServerSyncing, staleBefore).
		Update("status", model.ServerSyncing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *serverRepository) FinishSync(id int, status model.ServerStatus, lastSyncAt int64) error {
	fields := map[string]any{"status": status}
	if lastSyncAt > 0 {
		fields["last_sync_at"] = lastSyncAt
	}
	return r.db.Model(&model.Server{Id: id}).Updates(fields).Error
}
