package staff

import (
	"github.com/smallbiznis/voltshop/internal/staff/repository"
	"github.com/smallbiznis/voltshop/internal/staff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("staff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
