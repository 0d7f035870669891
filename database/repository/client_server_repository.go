package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// ClientServerRepository 定义客户端-服务器绑定的数据访问接口
type ClientServerRepository interface {
	// Find 按 (clientId, serverId) 查找，预加载 Server
	Find(clientId, serverId int) (*model.ClientServer, error)
	Exists(clientId, serverId int) (bool, error)
	// FindByClientID 返回客户端的全部绑定，预加载 Server
	FindByClientID(clientId int) ([]*model.ClientServer, error)
	Create(cs *model.ClientServer) error
	Delete(clientId, serverId int) error

	WithTx(tx *gorm.DB) ClientServerRepository
}

type clientServerRepository struct {
	db *gorm.DB
}

// NewClientServerRepository 创建新的 ClientServerRepository 实例
func NewClientServerRepository(db *gorm.DB) ClientServerRepository {
	return &clientServerRepository{db: db}
}

func (r *clientServerRepository) WithTx(tx *gorm.DB) ClientServerRepository {
	return &clientServerRepository{db: tx}
}

func (r *clientServerRepository) Find(clientId, serverId int) (*model.ClientServer, error) {
	cs := &model.ClientServer{}
	err := r.db.Model(model.ClientServer{}).
		Preload("Server").
		Where("client_id = ? AND server_id = ?", clientId, serverId).
		First(cs).Error
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *clientServerRepository) Exists(clientId, serverId int) (bool, error) {
	var count int64
	err := r.db.Model(model.ClientServer{}).
		Where("client_id = ? AND server_id = ?", clientId, serverId).
		Count(&count).Error
	return count > 0, err
}

func (r *clientServerRepository) FindByClientID(clientId int) ([]*model.ClientServer, error) {
	var list []*model.ClientServer
	err := r.db.Model(model.ClientServer{}).
		Preload("Server").
		Where("client_id = ?", clientId).
		Order("server_id").
		Find(&list).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return list, nil
}

func (r *clientServerRepository) Create(cs *model.ClientServer) error {
	return r.db.Omit("Server").Create(cs).Error
}

func (r *clientServerRepository) Delete(clientId, serverId int) error {
	return r.db.Where("client_id = ? AND server_id = ?", clientId, serverId).Delete(&model.ClientServer{}).Error
}
