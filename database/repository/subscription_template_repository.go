package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// SubscriptionTemplateRepository 定义订阅模板数据访问接口
type SubscriptionTemplateRepository interface {
	FindByID(id int) (*model.SubscriptionTemplate, error)
	FindAll() ([]*model.SubscriptionTemplate, error)
	Create(tpl *model.SubscriptionTemplate) error
	Updates(id int, fields map[string]any) error
	// Delete 删除模板并解除客户端上的引用
	Delete(id int) error
}

type subscriptionTemplateRepository struct {
	db *gorm.DB
}

// NewSubscriptionTemplateRepository 创建新的 SubscriptionTemplateRepository 实例
func NewSubscriptionTemplateRepository(db *gorm.DB) SubscriptionTemplateRepository {
	return &subscriptionTemplateRepository{db: db}
}

func (r *subscriptionTemplateRepository) FindByID(id int) (*model.SubscriptionTemplate, error) {
	tpl := &model.SubscriptionTemplate{}
	if err := r.db.Model(model.SubscriptionTemplate{}).First(tpl, id).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *subscriptionTemplateRepository) FindAll() ([]*model.SubscriptionTemplate, error) {
	var list []*model.SubscriptionTemplate
	err := r.db.Model(model.SubscriptionTemplate{}).Order("id").Find(&list).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return list, nil
}

func (r *subscriptionTemplateRepository) Create(tpl *model.SubscriptionTemplate) error {
	return r.db.Create(tpl).Error
}

func (r *subscriptionTemplateRepository) Updates(id int, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&model.SubscriptionTemplate{Id: id}).Updates(fields).Error
}

func (r *subscriptionTemplateRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Client{}).
			Where("subscription_template_id = ?", id).
			Update("subscription_template_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.SubscriptionTemplate{}, id).Error
	})
}
