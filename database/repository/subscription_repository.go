package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// SubscriptionRepository 定义 Subscription 数据访问接口
type SubscriptionRepository interface {
	// FindByToken 预加载客户端、其服务器绑定（含入站）和订阅模板
	FindByToken(token string) (*model.Subscription, error)
	FindByClientID(clientId int) (*model.Subscription, error)
	Create(sub *model.Subscription) error
	UpdateToken(id int, token string) error

	WithTx(tx *gorm.DB) SubscriptionRepository
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建新的 SubscriptionRepository 实例
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (r *subscriptionRepository) FindByToken(token string) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := r.db.Model(model.Subscription{}).
		Preload("Client").
		Preload("Client.Servers", func(db *gorm.DB) *gorm.DB { return db.Order("server_id") }).
		Preload("Client.Servers.Server").
		Preload("Client.Servers.Server.Inbounds", func(db *gorm.DB) *gorm.DB { return db.Order("external_inbound_id") }).
		Preload("Client.SubscriptionTemplate").
		Where("token = ?", token).
		First(sub).Error
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) FindByClientID(clientId int) (*model.Subscription, error) {
	sub := &model.Subscription{}
	if err := r.db.Model(model.Subscription{}).Where("client_id = ?", clientId).First(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Omit("Client").Create(sub).Error
}

func (r *subscriptionRepository) UpdateToken(id int, token string) error {
	return r.db.Model(&model.Subscription{Id: id}).Update("token", token).Error
}
