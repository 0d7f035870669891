//go:build wireinject
// +build wireinject

package bootstrap

import (
	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/repository"
	"github.com/sing-box-orbit/sing-box-orbit-back/sub"
	"github.com/sing-box-orbit/sing-box-orbit-back/web/service"

	"github.com/google/wire"
)

func InitializeApp() (*App, error) {
	wire.Build(
		database.GetDBProvider,
		repository.RepositorySet,
		service.ServiceSet,
		sub.NewSubService,
		NewApp,
	)
	return nil, nil
}
