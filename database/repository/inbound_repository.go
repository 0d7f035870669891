package repository

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"

	"gorm.io/gorm"
)

// InboundRepository 定义 Inbound 数据访问接口
type InboundRepository interface {
	FindByID(id int) (*model.Inbound, error)
	FindByServerID(serverId int) ([]*model.Inbound, error)
	Create(inbound *model.Inbound) error
	// UpdateSynced 只更新同步字段（tag/type/port/settings），不触碰 enabled
	UpdateSynced(inbound *model.Inbound) error
	SetEnabled(id int, enabled bool) error
	// DeleteByServerExcept 删除该服务器上 external_inbound_id 不在 keep 中的入站
	DeleteByServerExcept(serverId int, keep []int) (int64, error)
	// GetEnabledExternalIDs 返回该服务器上已启用入站的面板 id
	GetEnabledExternalIDs(serverId int) ([]int, error)

	WithTx(tx *gorm.DB) InboundRepository
	GetDB() *gorm.DB
}

type inboundRepository struct {
	db *gorm.DB
}

// NewInboundRepository 创建新的 InboundRepository 实例
func NewInboundRepository(db *gorm.DB) InboundRepository {
	return &inboundRepository{db: db}
}

func (r *inboundRepository) WithTx(tx *gorm.DB) InboundRepository {
	return &inboundRepository{db: tx}
}

func (r *inboundRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *inboundRepository) FindByID(id int) (*model.Inbound, error) {
	inbound := &model.Inbound{}
	if err := r.db.Model(model.Inbound{}).First(inbound, id).Error; err != nil {
		return nil, err
	}
	return inbound, nil
}

func (r *inboundRepository) FindByServerID(serverId int) ([]*model.Inbound, error) {
	var inbounds []*model.Inbound
	err := r.db.Model(model.Inbound{}).Where("server_id = ?", serverId).Order("external_inbound_id").Find(&inbounds).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return inbounds, nil
}

func (r *inboundRepository) Create(inbound *model.Inbound) error {
	return r.db.Create(inbound).Error
}

func (r *inboundRepository) UpdateSynced(inbound *model.Inbound) error {
	return r.db.Model(&model.Inbound{Id: inbound.Id}).
		Select("tag", "type", "port", "settings").
		Updates(inbound).Error
}

func (r *inboundRepository) SetEnabled(id int, enabled bool) error {
	return r.db.Model(&model.Inbound{Id: id}).Update("enabled", enabled).Error
}

func (r *inboundRepository) DeleteByServerExcept(serverId int, keep []int) (int64, error) {
	query := r.db.Where("server_id = ?", serverId)
	if len(keep) > 0 {
		query = query.Where("external_inbound_id NOT IN ?", keep)
	}
	res := query.Delete(&model.Inbound{})
	return res.RowsAffected, res.Error
}

func (r *inboundRepository) GetEnabledExternalIDs(serverId int) ([]int, error) {
	ids := []int{}
	err := r.db.Model(model.Inbound{}).
		Where("server_id = ? AND enabled = ?", serverId, true).
		Order("external_inbound_id").
		Pluck("external_inbound_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
