package main

import (
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/credential"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/httpserver"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/redis"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

type appConfig struct {
	Log       logger.Config
	HTTP      httpserver.Config
	Postgres  pg.Config
	Redis     redis.Config
	Directory tenant.Config
	TenantDB  tenantdb.Config
	Auth      credential.Config
}
