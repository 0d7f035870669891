package service

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/entity"
)

type SubscriptionTemplateService struct {
	templateRepo repository.SubscriptionTemplateRepository
}

func NewSubscriptionTemplateService(templateRepo repository.SubscriptionTemplateRepository) *SubscriptionTemplateService {
	return &SubscriptionTemplateService{templateRepo: templateRepo}
}

func (s *SubscriptionTemplateService) GetTemplates() ([]*model.SubscriptionTemplate, error) {
	return s.templateRepo.FindAll()
}

func (s *SubscriptionTemplateService) GetTemplate(id int) (*model.SubscriptionTemplate, error) {
	tpl, err := s.templateRepo.FindByID(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NotFound("SubscriptionTemplateService.GetTemplate", "SubscriptionTemplate", id)
		}
		return nil, err
	}
	return tpl, nil
}

// CreateTemplate 未指定更新间隔时使用默认的 24 小时
func (s *SubscriptionTemplateService) CreateTemplate(input *entity.TemplateInput) (*model.SubscriptionTemplate, error) {
	if err := input.CheckValid(true); err != nil {
		return nil, err
	}
	tpl := &model.SubscriptionTemplate{UpdateInterval: model.DefaultUpdateInterval}
	applyTemplateInput(tpl, input)
	if err := s.templateRepo.Create(tpl); err != nil {
		return nil, common.Wrap("SubscriptionTemplateService.CreateTemplate", err)
	}
	return tpl, nil
}

func (s *SubscriptionTemplateService) UpdateTemplate(id int, input *entity.TemplateInput) (*model.SubscriptionTemplate, error) {
	const op = "SubscriptionTemplateService.UpdateTemplate"
	if err := input.CheckValid(false); err != nil {
		return nil, err
	}
	if _, err := s.GetTemplate(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.ProfileTitle != nil {
		fields["profile_title"] = *input.ProfileTitle
	}
	if input.UpdateInterval != nil {
		fields["update_interval"] = *input.UpdateInterval
	}
	if input.UpdateAlways != nil {
		fields["update_always"] = *input.UpdateAlways
	}
	if input.Announce != nil {
		fields["announce"] = *input.Announce
	}
	if input.AnnounceUrl != nil {
		fields["announce_url"] = *input.AnnounceUrl
	}
	if input.Routing != nil {
		fields["routing"] = *input.Routing
	}
	if input.TrafficTotal != nil {
		fields["traffic_total"] = *input.TrafficTotal
	}
	if len(fields) > 0 {
		if err := s.templateRepo.Updates(id, fields); err != nil {
			return nil, common.Wrap(op, err)
		}
	}
	return s.GetTemplate(id)
}

// DeleteTemplate 删除模板，引用它的客户端回退到默认订阅头
func (s *SubscriptionTemplateService) DeleteTemplate(id int) error {
	if _, err := s.GetTemplate(id); err != nil {
		return err
	}
	return common.Wrap("SubscriptionTemplateService.DeleteTemplate", s.templateRepo.Delete(id))
}

func applyTemplateInput(tpl *model.SubscriptionTemplate, input *entity.TemplateInput) {
	if input.Name != nil {
		tpl.Name = *input.Name
	}
	if input.ProfileTitle != nil {
		tpl.ProfileTitle = *input.ProfileTitle
	}
	if input.UpdateInterval != nil {
		tpl.UpdateInterval = *input.UpdateInterval
	}
	if input.UpdateAlways != nil {
		tpl.UpdateAlways = *input.UpdateAlways
	}
	if input.Announce != nil {
		tpl.Announce = *input.Announce
	}
	if input.AnnounceUrl != nil {
		tpl.AnnounceUrl = *input.AnnounceUrl
	}
	if input.Routing != nil {
		tpl.Routing = *input.Routing
	}
	if input.TrafficTotal != nil {
		tpl.TrafficTotal = *input.TrafficTotal
	}
}
