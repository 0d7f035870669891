package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// ClientRepository 定义 Client 数据访问接口
type ClientRepository interface {
	FindByID(id int) (*model.Client, error)
	// FindByIDWithRelations 预加载绑定的服务器（含入站）、订阅和模板
	FindByIDWithRelations(id int) (*model.Client, error)
	FindByUsername(username string) (*model.Client, error)
	FindAll() ([]*model.Client, error)
	// CreateWithSubscription 在同一事务中创建客户端及其订阅
	CreateWithSubscription(client *model.Client, token string) error
	Updates(id int, fields map[string]any) error
	// DeleteCascade 删除客户端、其服务器绑定和订阅
	DeleteCascade(id int) error

	WithTx(tx *gorm.DB) ClientRepository
	GetDB() *gorm.DB
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建新的 ClientRepository 实例
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) WithTx(tx *gorm.DB) ClientRepository {
	return &clientRepository{db: tx}
}

func (r *clientRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *clientRepository) FindByID(id int) (*model.Client, error) {
	client := &model.Client{}
	if err := r.db.Model(model.Client{}).First(client, id).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) withRelations() *gorm.DB {
	return r.db.Model(model.Client{}).
		Preload("Servers", func(db *gorm.DB) *gorm.DB { return db.Order("server_id") }).
		Preload("Servers.Server").
		Preload("Servers.Server.Inbounds", func(db *gorm.DB) *gorm.DB { return db.Order("external_inbound_id") }).
		Preload("Subscription").
		Preload("SubscriptionTemplate")
}

func (r *clientRepository) FindByIDWithRelations(id int) (*model.Client, error) {
	client := &model.Client{}
	if err := r.withRelations().First(client, id).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) FindByUsername(username string) (*model.Client, error) {
	client := &model.Client{}
	if err := r.db.Model(model.Client{}).Where("username = ?", username).First(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) FindAll() ([]*model.Client, error) {
	var clients []*model.Client
	err := r.withRelations().Order("id").Find(&clients).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) CreateWithSubscription(client *model.Client, token string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Servers", "Subscription", "SubscriptionTemplate").Create(client).Error; err != nil {
			return err
		}
		sub := &model.Subscription{ClientId: client.Id, Token: token}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		client.Subscription = sub
		return nil
	})
}

func (r *clientRepository) Updates(id int, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&model.Client{Id: id}).Updates(fields).Error
}

func (r *clientRepository) DeleteCascade(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&model.ClientServer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&model.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Client{}, id).Error
	})
}
